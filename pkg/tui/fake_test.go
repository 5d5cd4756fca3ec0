package tui

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
)

var (
	tribeAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	ownerAddr  = common.HexToAddress("0x0000000000000000000000000000000000000a11")
	memberAddr = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	sellerAddr = common.HexToAddress("0x0000000000000000000000000000000000000c0c")
)

type fakeTribe struct {
	mu       sync.Mutex
	max      [models.TierCount]int64
	cur      [models.TierCount]int64
	price    [models.TierCount]int64
	tokens   []models.Token
	listings []models.Listing
	minted   []models.Tier
	bought   []int64
	nextHash int64
}

func newFakeTribe() *fakeTribe {
	exp := big.NewInt(time.Now().Add(time.Hour).Unix())
	return &fakeTribe{
		max:   [3]int64{10, 5, 1},
		cur:   [3]int64{3, 5, 0},
		price: [3]int64{1e15, 1e16, 1e17},
		tokens: []models.Token{
			{ID: big.NewInt(1), Tier: models.TierSilver, Owner: sellerAddr},
			{ID: big.NewInt(2), Tier: models.TierSilver, Owner: sellerAddr},
		},
		listings: []models.Listing{
			{TokenID: big.NewInt(1), Seller: sellerAddr, Price: big.NewInt(2e16), Expiration: exp, Active: true},
			{TokenID: big.NewInt(2), Seller: sellerAddr, Price: big.NewInt(3e16), Expiration: exp, Active: true},
		},
	}
}

func (f *fakeTribe) Address() common.Address { return tribeAddr }

func (f *fakeTribe) Name(context.Context) (string, error) { return "Night Owls", nil }
func (f *fakeTribe) Description(context.Context) (string, error) { return "late crew", nil }
func (f *fakeTribe) Owner(context.Context) (common.Address, error) {
	return ownerAddr, nil
}

func (f *fakeTribe) get(arr *[models.TierCount]int64, t models.Tier) *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return big.NewInt(arr[t])
}

func (f *fakeTribe) MaxSupply(_ context.Context, t models.Tier) (*big.Int, error) {
	return f.get(&f.max, t), nil
}

func (f *fakeTribe) CurrentSupply(_ context.Context, t models.Tier) (*big.Int, error) {
	return f.get(&f.cur, t), nil
}

func (f *fakeTribe) Price(_ context.Context, t models.Tier) (*big.Int, error) {
	return f.get(&f.price, t), nil
}

func (f *fakeTribe) owned(user common.Address) []models.Token {
	var out []models.Token
	for _, tok := range f.tokens {
		if tok.Owner == user {
			out = append(out, tok)
		}
	}
	return out
}

func (f *fakeTribe) MemberTiers(_ context.Context, user common.Address) (models.TierCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := models.TierCounts{new(big.Int), new(big.Int), new(big.Int)}
	for _, tok := range f.owned(user) {
		counts[tok.Tier].Add(counts[tok.Tier], big.NewInt(1))
	}
	return counts, nil
}

func (f *fakeTribe) BalanceOf(_ context.Context, user common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return big.NewInt(int64(len(f.owned(user)))), nil
}

func (f *fakeTribe) TokenOfOwnerByIndex(_ context.Context, user common.Address, index *big.Int) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owned := f.owned(user)
	if int(index.Int64()) >= len(owned) {
		return nil, errors.New("index out of bounds")
	}
	return owned[index.Int64()].ID, nil
}

func (f *fakeTribe) TokenTier(_ context.Context, id *big.Int) (models.Tier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tok := range f.tokens {
		if tok.ID.Cmp(id) == 0 {
			return tok.Tier, nil
		}
	}
	return 0, errors.New("unknown token")
}

func (f *fakeTribe) ActiveListings(context.Context) ([]*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []*big.Int
	for _, l := range f.listings {
		if l.Active {
			ids = append(ids, l.TokenID)
		}
	}
	return ids, nil
}

func (f *fakeTribe) Listing(_ context.Context, id *big.Int) (models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.listings {
		if l.TokenID.Cmp(id) == 0 {
			return l, nil
		}
	}
	return models.Listing{TokenID: id}, nil
}

func (f *fakeTribe) hash() common.Hash {
	f.nextHash++
	return common.BigToHash(big.NewInt(f.nextHash))
}

func (f *fakeTribe) Mint(_ context.Context, tx chain.Transactor, t models.Tier, value *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value.Cmp(big.NewInt(f.price[t])) != 0 {
		return common.Hash{}, errors.New("execution reverted: wrong payment")
	}
	f.cur[t]++
	f.minted = append(f.minted, t)
	f.tokens = append(f.tokens, models.Token{ID: big.NewInt(int64(len(f.tokens) + 1)), Tier: t, Owner: tx.From()})
	return f.hash(), nil
}

func (f *fakeTribe) ListToken(context.Context, chain.Transactor, *big.Int, *big.Int, *big.Int) (common.Hash, error) {
	return common.Hash{}, errors.New("not used")
}

func (f *fakeTribe) BuyToken(_ context.Context, tx chain.Transactor, id, _ *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.listings {
		if f.listings[i].TokenID.Cmp(id) == 0 {
			f.listings[i].Active = false
		}
	}
	for i := range f.tokens {
		if f.tokens[i].ID.Cmp(id) == 0 {
			f.tokens[i].Owner = tx.From()
		}
	}
	f.bought = append(f.bought, id.Int64())
	return f.hash(), nil
}

func (f *fakeTribe) mintedTiers() []models.Tier {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Tier(nil), f.minted...)
}

func (f *fakeTribe) boughtIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.bought...)
}

type fakeSigner struct{ from common.Address }

func (s fakeSigner) From() common.Address { return s.from }

func (s fakeSigner) Transact(context.Context, common.Address, *big.Int, []byte) (common.Hash, error) {
	return common.Hash{}, errors.New("not used")
}

type fakeConfirmer struct {
	release chan struct{}
	err     error
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
