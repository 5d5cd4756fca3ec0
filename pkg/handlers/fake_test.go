package handlers

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
	"tribe-backend/pkg/tribe"
)

var (
	tribeAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	ownerAddr  = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	bronzeUser = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	silverUser = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

var errRPC = errors.New("rpc unavailable")

// fakeTribe answers reads from fixed state; writes are not used by handlers.
type fakeTribe struct {
	mu       sync.Mutex
	addr     common.Address
	owner    common.Address
	members  map[common.Address]models.TierCounts
	max      [3]int64
	cur      [3]int64
	price    [3]int64
	listings []models.Listing
	fail     map[string]error
	calls    map[string]int
}

func newFakeTribe() *fakeTribe {
	return &fakeTribe{
		addr:  tribeAddr,
		owner: ownerAddr,
		members: map[common.Address]models.TierCounts{
			bronzeUser: {big.NewInt(1), big.NewInt(0), big.NewInt(0)},
			silverUser: {big.NewInt(0), big.NewInt(2), big.NewInt(0)},
		},
		max:   [3]int64{100, 50, 10},
		cur:   [3]int64{10, 50, 0},
		price: [3]int64{1e15, 1e16, 1e17},
		fail:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeTribe) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	if err := f.fail[method]; err != nil {
		return &chain.ContractReadError{Contract: "TribeNFT", Address: f.addr, Method: method, Err: err}
	}
	return nil
}

func (f *fakeTribe) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeTribe) Address() common.Address { return f.addr }

func (f *fakeTribe) Name(context.Context) (string, error) {
	return "Night Owls", f.enter("name")
}

func (f *fakeTribe) Description(context.Context) (string, error) {
	return "late crew", f.enter("description")
}

func (f *fakeTribe) Owner(context.Context) (common.Address, error) {
	if err := f.enter("owner"); err != nil {
		return common.Address{}, err
	}
	return f.owner, nil
}

func (f *fakeTribe) MaxSupply(_ context.Context, t models.Tier) (*big.Int, error) {
	if err := f.enter("maxSupplies"); err != nil {
		return nil, err
	}
	return big.NewInt(f.max[t]), nil
}

func (f *fakeTribe) CurrentSupply(_ context.Context, t models.Tier) (*big.Int, error) {
	if err := f.enter("currentSupplies"); err != nil {
		return nil, err
	}
	return big.NewInt(f.cur[t]), nil
}

func (f *fakeTribe) Price(_ context.Context, t models.Tier) (*big.Int, error) {
	if err := f.enter("prices"); err != nil {
		return nil, err
	}
	return big.NewInt(f.price[t]), nil
}

func (f *fakeTribe) MemberTiers(_ context.Context, user common.Address) (models.TierCounts, error) {
	if err := f.enter("getMemberTiers"); err != nil {
		return models.TierCounts{}, err
	}
	if c, ok := f.members[user]; ok {
		return c, nil
	}
	return models.TierCounts{big.NewInt(0), big.NewInt(0), big.NewInt(0)}, nil
}

func (f *fakeTribe) BalanceOf(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(0), f.enter("balanceOf")
}

func (f *fakeTribe) TokenOfOwnerByIndex(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTribe) TokenTier(context.Context, *big.Int) (models.Tier, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeTribe) ActiveListings(context.Context) ([]*big.Int, error) {
	if err := f.enter("getActiveListings"); err != nil {
		return nil, err
	}
	ids := make([]*big.Int, 0, len(f.listings))
	for _, l := range f.listings {
		ids = append(ids, l.TokenID)
	}
	return ids, nil
}

func (f *fakeTribe) Listing(_ context.Context, id *big.Int) (models.Listing, error) {
	if err := f.enter("getListing"); err != nil {
		return models.Listing{}, err
	}
	for _, l := range f.listings {
		if l.TokenID.Cmp(id) == 0 {
			return l, nil
		}
	}
	return models.Listing{TokenID: id, Price: new(big.Int), Expiration: new(big.Int)}, nil
}

func (f *fakeTribe) Mint(context.Context, chain.Transactor, models.Tier, *big.Int) (common.Hash, error) {
	return common.Hash{}, errors.New("read only")
}

func (f *fakeTribe) ListToken(context.Context, chain.Transactor, *big.Int, *big.Int, *big.Int) (common.Hash, error) {
	return common.Hash{}, errors.New("read only")
}

func (f *fakeTribe) BuyToken(context.Context, chain.Transactor, *big.Int, *big.Int) (common.Hash, error) {
	return common.Hash{}, errors.New("read only")
}

type fakeFactory struct {
	all     []common.Address
	created map[common.Address][]common.Address
	err     error
}

func (f *fakeFactory) Tribes(context.Context) ([]common.Address, error) {
	return f.all, f.err
}

func (f *fakeFactory) CreatorTribes(_ context.Context, creator common.Address) ([]common.Address, error) {
	return f.created[creator], f.err
}

func (f *fakeFactory) CreateTribe(context.Context, chain.Transactor, string, string, models.TierCounts, models.TierCounts) (common.Hash, error) {
	return common.Hash{}, errors.New("read only")
}

func backendFor(ft *fakeTribe, factory tribe.Factory) ChainBackend {
	return ChainBackend{
		OpenTribe: func(common.Address) tribe.Contract { return ft },
		Factory:   factory,
	}
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	vals []interface{}
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.vals = append(p.vals, value)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }
