package tribe

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
)

var (
	tribeAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	ownerAddr = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	userAddr  = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

// fakeContract is an in-memory tribe whose writes take effect immediately.
type fakeContract struct {
	mu sync.Mutex

	name, description string
	owner             common.Address
	max, cur, price   [models.TierCount]int64
	tokens            []models.Token
	listings          map[int64]models.Listing
	activeIDs         []int64
	fail              map[string]error
	nextHash          int64
	reads             map[string]int
}

func newFakeContract() *fakeContract {
	return &fakeContract{
		name:        "Night Owls",
		description: "late crew",
		owner:       ownerAddr,
		max:         [3]int64{10, 5, 0},
		cur:         [3]int64{3, 5, 0},
		price:       [3]int64{1e15, 1e16, 0},
		listings:    map[int64]models.Listing{},
		fail:        map[string]error{},
		reads:       map[string]int{},
	}
}

func (f *fakeContract) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads[method]++
	if err := f.fail[method]; err != nil {
		return &chain.ContractReadError{Contract: "TribeNFT", Address: tribeAddr, Method: method, Err: err}
	}
	return nil
}

func (f *fakeContract) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[method]
}

func (f *fakeContract) Address() common.Address { return tribeAddr }

func (f *fakeContract) Name(context.Context) (string, error) {
	if err := f.enter("name"); err != nil {
		return "", err
	}
	return f.name, nil
}

func (f *fakeContract) Description(context.Context) (string, error) {
	if err := f.enter("description"); err != nil {
		return "", err
	}
	return f.description, nil
}

func (f *fakeContract) Owner(context.Context) (common.Address, error) {
	if err := f.enter("owner"); err != nil {
		return common.Address{}, err
	}
	return f.owner, nil
}

func (f *fakeContract) tierValue(method string, arr *[models.TierCount]int64, t models.Tier) (*big.Int, error) {
	if err := f.enter(method); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return big.NewInt(arr[t]), nil
}

func (f *fakeContract) MaxSupply(_ context.Context, t models.Tier) (*big.Int, error) {
	return f.tierValue("maxSupplies", &f.max, t)
}

func (f *fakeContract) CurrentSupply(_ context.Context, t models.Tier) (*big.Int, error) {
	return f.tierValue("currentSupplies", &f.cur, t)
}

func (f *fakeContract) Price(_ context.Context, t models.Tier) (*big.Int, error) {
	return f.tierValue("prices", &f.price, t)
}

func (f *fakeContract) MemberTiers(_ context.Context, user common.Address) (models.TierCounts, error) {
	var counts models.TierCounts
	if err := f.enter("getMemberTiers"); err != nil {
		return counts, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range counts {
		counts[i] = new(big.Int)
	}
	for _, tok := range f.tokens {
		if tok.Owner == user {
			counts[tok.Tier].Add(counts[tok.Tier], big.NewInt(1))
		}
	}
	return counts, nil
}

func (f *fakeContract) owned(user common.Address) []models.Token {
	var out []models.Token
	for _, tok := range f.tokens {
		if tok.Owner == user {
			out = append(out, tok)
		}
	}
	return out
}

func (f *fakeContract) BalanceOf(_ context.Context, user common.Address) (*big.Int, error) {
	if err := f.enter("balanceOf"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return big.NewInt(int64(len(f.owned(user)))), nil
}

func (f *fakeContract) TokenOfOwnerByIndex(_ context.Context, user common.Address, index *big.Int) (*big.Int, error) {
	if err := f.enter("tokenOfOwnerByIndex"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	owned := f.owned(user)
	i := int(index.Int64())
	if i >= len(owned) {
		return nil, errors.New("index out of bounds")
	}
	return owned[i].ID, nil
}

func (f *fakeContract) TokenTier(_ context.Context, id *big.Int) (models.Tier, error) {
	if err := f.enter("tokenTiers"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tok := range f.tokens {
		if tok.ID.Cmp(id) == 0 {
			return tok.Tier, nil
		}
	}
	return 0, errors.New("unknown token")
}

func (f *fakeContract) ActiveListings(context.Context) ([]*big.Int, error) {
	if err := f.enter("getActiveListings"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*big.Int, 0, len(f.activeIDs))
	for _, id := range f.activeIDs {
		out = append(out, big.NewInt(id))
	}
	return out, nil
}

func (f *fakeContract) Listing(_ context.Context, id *big.Int) (models.Listing, error) {
	if err := f.enter("getListing"); err != nil {
		return models.Listing{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id.Int64()]
	if !ok {
		return models.Listing{TokenID: id}, nil
	}
	return l, nil
}

func (f *fakeContract) hash() common.Hash {
	f.nextHash++
	return common.BigToHash(big.NewInt(f.nextHash))
}

func (f *fakeContract) Mint(_ context.Context, tx chain.Transactor, t models.Tier, value *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["mint"]; err != nil {
		return common.Hash{}, err
	}
	if value.Cmp(big.NewInt(f.price[t])) != 0 {
		return common.Hash{}, fmt.Errorf("execution reverted: wrong payment")
	}
	f.cur[t]++
	f.tokens = append(f.tokens, models.Token{ID: big.NewInt(int64(len(f.tokens) + 1)), Tier: t, Owner: tx.From()})
	return f.hash(), nil
}

func (f *fakeContract) ListToken(_ context.Context, tx chain.Transactor, id, price, expiration *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[id.Int64()] = models.Listing{TokenID: id, Seller: tx.From(), Price: price, Expiration: expiration, Active: true}
	f.activeIDs = append(f.activeIDs, id.Int64())
	return f.hash(), nil
}

func (f *fakeContract) BuyToken(_ context.Context, tx chain.Transactor, id, value *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.listings[id.Int64()]
	l.Active = false
	f.listings[id.Int64()] = l
	for i := range f.tokens {
		if f.tokens[i].ID.Cmp(id) == 0 {
			f.tokens[i].Owner = tx.From()
		}
	}
	return f.hash(), nil
}

type fakeFactory struct {
	all      []common.Address
	created  map[common.Address][]common.Address
	err      error
	lastArgs struct {
		name        string
		maxSupplies models.TierCounts
		prices      models.TierCounts
	}
}

func (f *fakeFactory) Tribes(context.Context) ([]common.Address, error) {
	return f.all, f.err
}

func (f *fakeFactory) CreatorTribes(_ context.Context, creator common.Address) ([]common.Address, error) {
	return f.created[creator], f.err
}

func (f *fakeFactory) CreateTribe(_ context.Context, _ chain.Transactor, name, _ string, maxSupplies, prices models.TierCounts) (common.Hash, error) {
	f.lastArgs.name = name
	f.lastArgs.maxSupplies = maxSupplies
	f.lastArgs.prices = prices
	return common.HexToHash("0xc0ffee"), nil
}

type fakeSigner struct{ from common.Address }

func (s fakeSigner) From() common.Address { return s.from }

func (s fakeSigner) Transact(context.Context, common.Address, *big.Int, []byte) (common.Hash, error) {
	return common.Hash{}, errors.New("not used")
}

type fakeConfirmer struct {
	err     error
	release chan struct{}
}

func (c *fakeConfirmer) Wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}, nil
}
