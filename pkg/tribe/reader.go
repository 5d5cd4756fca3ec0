package tribe

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"tribe-backend/pkg/models"
)

// Fetch is one independent read. Run never depends on another fetch.
type Fetch struct {
	Key  FieldKey
	Tier models.Tier
	Run  func(ctx context.Context) (interface{}, error)
}

// Do executes the fetch and wraps the outcome as an Update.
func (f Fetch) Do(ctx context.Context, generation uint64) Update {
	v, err := f.Run(ctx)
	return Update{Generation: generation, Key: f.Key, Tier: f.Tier, Value: v, Err: err}
}

// Reader derives a tribe's display state from independent contract reads.
type Reader struct {
	contract Contract
	now      func() time.Time
}

// NewReader creates a reader over contract.
func NewReader(contract Contract) *Reader {
	return &Reader{contract: contract, now: time.Now}
}

// Contract returns the underlying contract.
func (r *Reader) Contract() Contract { return r.contract }

// TribeFetches are the reads that do not depend on a connected user.
func (r *Reader) TribeFetches() []Fetch {
	c := r.contract
	fetches := []Fetch{
		{Key: KeyName, Run: func(ctx context.Context) (interface{}, error) { return c.Name(ctx) }},
		{Key: KeyDescription, Run: func(ctx context.Context) (interface{}, error) { return c.Description(ctx) }},
		{Key: KeyOwner, Run: func(ctx context.Context) (interface{}, error) { return c.Owner(ctx) }},
	}
	for _, t := range models.AllTiers {
		t := t
		fetches = append(fetches,
			Fetch{Key: KeyMaxSupply, Tier: t, Run: func(ctx context.Context) (interface{}, error) { return c.MaxSupply(ctx, t) }},
			Fetch{Key: KeyCurrentSupply, Tier: t, Run: func(ctx context.Context) (interface{}, error) { return c.CurrentSupply(ctx, t) }},
			Fetch{Key: KeyPrice, Tier: t, Run: func(ctx context.Context) (interface{}, error) { return c.Price(ctx, t) }},
		)
	}
	return fetches
}

// SupplyFetches re-read what a mint can change.
func (r *Reader) SupplyFetches() []Fetch {
	c := r.contract
	var fetches []Fetch
	for _, t := range models.AllTiers {
		t := t
		fetches = append(fetches,
			Fetch{Key: KeyCurrentSupply, Tier: t, Run: func(ctx context.Context) (interface{}, error) { return c.CurrentSupply(ctx, t) }},
		)
	}
	return fetches
}

// UserFetches are the reads scoped to a connected user.
func (r *Reader) UserFetches(user common.Address) []Fetch {
	c := r.contract
	return []Fetch{
		{Key: KeyMemberTiers, Run: func(ctx context.Context) (interface{}, error) { return c.MemberTiers(ctx, user) }},
		{Key: KeyBalance, Run: func(ctx context.Context) (interface{}, error) { return c.BalanceOf(ctx, user) }},
		{Key: KeyHoldings, Run: func(ctx context.Context) (interface{}, error) { return Holdings(ctx, c, user) }},
	}
}

// ListingFetch reads the purchasable marketplace listings.
func (r *Reader) ListingFetch() Fetch {
	m := &Marketplace{contract: r.contract, now: r.now}
	return Fetch{Key: KeyListings, Run: func(ctx context.Context) (interface{}, error) { return m.Purchasable(ctx) }}
}

// Fetches returns every read for the tribe page. user is nil when no
// wallet is connected.
func (r *Reader) Fetches(user *common.Address) []Fetch {
	fetches := r.TribeFetches()
	fetches = append(fetches, r.ListingFetch())
	if user != nil {
		fetches = append(fetches, r.UserFetches(*user)...)
	}
	return fetches
}

// Run executes fetches concurrently, calling onUpdate (serialized) as each
// one resolves. Read failures are reported per field and never abort the
// other reads.
func Run(ctx context.Context, fetches []Fetch, generation uint64, onUpdate func(Update)) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range fetches {
		f := f
		g.Go(func() error {
			u := f.Do(gctx, generation)
			mu.Lock()
			defer mu.Unlock()
			if onUpdate != nil {
				onUpdate(u)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Read loads a full snapshot, streaming each field through onUpdate.
func (r *Reader) Read(ctx context.Context, user *common.Address, onUpdate func(Update)) Snapshot {
	snap := NewSnapshot(r.contract.Address())
	Run(ctx, r.Fetches(user), 0, func(u Update) {
		snap.Apply(u)
		if onUpdate != nil {
			onUpdate(u)
		}
	})
	return snap
}

// Refresh re-runs fetches into snap under a new generation.
func (r *Reader) Refresh(ctx context.Context, snap *Snapshot, fetches []Fetch) {
	gen := snap.Generation + 1
	Run(ctx, fetches, gen, func(u Update) { snap.Apply(u) })
}
