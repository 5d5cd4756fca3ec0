package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/models"
)

// Tribe is a typed binding of a single tribe contract.
type Tribe struct {
	c boundContract
}

// NewTribe binds the tribe contract deployed at address.
func NewTribe(address common.Address, caller ethereum.ContractCaller) *Tribe {
	return &Tribe{c: boundContract{name: "TribeNFT", address: address, abi: tribeABI, caller: caller}}
}

// Address returns the tribe contract address.
func (t *Tribe) Address() common.Address { return t.c.address }

func (t *Tribe) Name(ctx context.Context) (string, error) {
	return t.readString(ctx, "name")
}

func (t *Tribe) Description(ctx context.Context) (string, error) {
	return t.readString(ctx, "description")
}

func (t *Tribe) Owner(ctx context.Context) (common.Address, error) {
	values, err := t.c.call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	out, err := decodeAddress(values)
	if err != nil {
		return common.Address{}, t.c.readErr("owner", err)
	}
	return out, nil
}

func (t *Tribe) MaxSupply(ctx context.Context, tier models.Tier) (*big.Int, error) {
	return t.readUint(ctx, "maxSupplies", tier.BigInt())
}

func (t *Tribe) CurrentSupply(ctx context.Context, tier models.Tier) (*big.Int, error) {
	return t.readUint(ctx, "currentSupplies", tier.BigInt())
}

func (t *Tribe) Price(ctx context.Context, tier models.Tier) (*big.Int, error) {
	return t.readUint(ctx, "prices", tier.BigInt())
}

// MemberTiers returns how many tokens of each tier user holds.
func (t *Tribe) MemberTiers(ctx context.Context, user common.Address) (models.TierCounts, error) {
	values, err := t.c.call(ctx, "getMemberTiers", user)
	if err != nil {
		return models.TierCounts{}, err
	}
	out, err := decodeTierCounts(values)
	if err != nil {
		return models.TierCounts{}, t.c.readErr("getMemberTiers", err)
	}
	return out, nil
}

func (t *Tribe) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.readUint(ctx, "balanceOf", owner)
}

func (t *Tribe) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	return t.readUint(ctx, "tokenOfOwnerByIndex", owner, index)
}

func (t *Tribe) TokenTier(ctx context.Context, tokenID *big.Int) (models.Tier, error) {
	values, err := t.c.call(ctx, "tokenTiers", tokenID)
	if err != nil {
		return 0, err
	}
	tier, err := decodeTier(values)
	if err != nil {
		return 0, t.c.readErr("tokenTiers", err)
	}
	return tier, nil
}

// ActiveListings returns the token ids the contract reports as listed.
func (t *Tribe) ActiveListings(ctx context.Context) ([]*big.Int, error) {
	values, err := t.c.call(ctx, "getActiveListings")
	if err != nil {
		return nil, err
	}
	out, err := decodeBigInts(values)
	if err != nil {
		return nil, t.c.readErr("getActiveListings", err)
	}
	return out, nil
}

func (t *Tribe) Listing(ctx context.Context, tokenID *big.Int) (models.Listing, error) {
	values, err := t.c.call(ctx, "getListing", tokenID)
	if err != nil {
		return models.Listing{}, err
	}
	out, err := decodeListing(tokenID, values)
	if err != nil {
		return models.Listing{}, t.c.readErr("getListing", err)
	}
	return out, nil
}

// Mint submits mint(tier) paying value.
func (t *Tribe) Mint(ctx context.Context, tx Transactor, tier models.Tier, value *big.Int) (common.Hash, error) {
	return t.c.transact(ctx, tx, value, "mint", tier.BigInt())
}

// ListToken submits listToken(tokenId, price, expiration).
func (t *Tribe) ListToken(ctx context.Context, tx Transactor, tokenID, price, expiration *big.Int) (common.Hash, error) {
	return t.c.transact(ctx, tx, nil, "listToken", tokenID, price, expiration)
}

// BuyToken submits buyToken(tokenId) paying value.
func (t *Tribe) BuyToken(ctx context.Context, tx Transactor, tokenID, value *big.Int) (common.Hash, error) {
	return t.c.transact(ctx, tx, value, "buyToken", tokenID)
}

func (t *Tribe) readString(ctx context.Context, method string) (string, error) {
	values, err := t.c.call(ctx, method)
	if err != nil {
		return "", err
	}
	out, err := decodeString(values)
	if err != nil {
		return "", t.c.readErr(method, err)
	}
	return out, nil
}

func (t *Tribe) readUint(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	values, err := t.c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	out, err := decodeBigInt(values)
	if err != nil {
		return nil, t.c.readErr(method, err)
	}
	return out, nil
}
