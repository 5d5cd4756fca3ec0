package tribe

import (
	"context"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"

	"tribe-backend/pkg/models"
)

const listingReadConcurrency = 8

// Marketplace reads the listings of one tribe.
type Marketplace struct {
	contract Contract
	now      func() time.Time
}

// NewMarketplace creates a marketplace reader using the wall clock.
func NewMarketplace(contract Contract) *Marketplace {
	return &Marketplace{contract: contract, now: time.Now}
}

// Purchasable returns listings that may be offered for purchase: active
// and not yet expired. The contract keeps expired listings active, so
// expiration is enforced here against the wall clock.
func (m *Marketplace) Purchasable(ctx context.Context) ([]models.Listing, error) {
	ids, err := m.contract.ActiveListings(ctx)
	if err != nil {
		return nil, err
	}
	ids = dedupIDs(ids)

	listings := make([]models.Listing, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listingReadConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			l, err := m.contract.Listing(gctx, id)
			if err != nil {
				return err
			}
			listings[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := m.now()
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Purchasable(now) {
			out = append(out, l)
		}
	}
	return out, nil
}

func dedupIDs(ids []*big.Int) []*big.Int {
	seen := make(map[string]struct{}, len(ids))
	out := make([]*big.Int, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		k := id.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, id)
	}
	return out
}
