package tribe

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
)

// CreateTribeInput is the raw create-tribe form: supplies are integers,
// prices are decimal ether amounts, both indexed by tier.
type CreateTribeInput struct {
	Name        string
	Description string
	MaxSupplies [models.TierCount]string
	Prices      [models.TierCount]string
}

// Parse validates the form and converts it to contract arguments.
func (in CreateTribeInput) Parse() (maxSupplies, prices models.TierCounts, err error) {
	if strings.TrimSpace(in.Name) == "" {
		return maxSupplies, prices, &ValidationError{Field: "name", Message: "required"}
	}
	for _, t := range models.AllTiers {
		raw := strings.TrimSpace(in.MaxSupplies[t])
		if raw == "" {
			raw = "0"
		}
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok || n.Sign() < 0 {
			return maxSupplies, prices, &ValidationError{
				Field:   fmt.Sprintf("maxSupplies[%d]", t),
				Message: fmt.Sprintf("%q is not a non-negative integer", in.MaxSupplies[t]),
			}
		}
		maxSupplies[t] = n

		rawPrice := strings.TrimSpace(in.Prices[t])
		if rawPrice == "" {
			rawPrice = "0"
		}
		p, err := chain.ParseEther(rawPrice)
		if err != nil {
			return maxSupplies, prices, &ValidationError{Field: fmt.Sprintf("prices[%d]", t), Message: err.Error()}
		}
		prices[t] = p
	}
	return maxSupplies, prices, nil
}

// CreateTribe builds the create-tribe mutation. refresh should reload the
// directory lists.
func CreateTribe(f Factory, tx chain.Transactor, in CreateTribeInput, refresh func(context.Context)) (Mutation, error) {
	if tx == nil {
		return Mutation{}, ErrNotConnected
	}
	maxSupplies, prices, err := in.Parse()
	if err != nil {
		return Mutation{}, err
	}
	name, desc := strings.TrimSpace(in.Name), strings.TrimSpace(in.Description)
	return Mutation{
		Action: ActionCreateTribe,
		Target: name,
		Submit: func(ctx context.Context) (common.Hash, error) {
			return f.CreateTribe(ctx, tx, name, desc, maxSupplies, prices)
		},
		Refresh: refresh,
	}, nil
}

// Mint builds a mint of tier paying price. refresh should reload tier
// supplies and the user's holdings.
func Mint(c Contract, tx chain.Transactor, tier models.Tier, price *big.Int, refresh func(context.Context)) (Mutation, error) {
	if tx == nil {
		return Mutation{}, ErrNotConnected
	}
	if !tier.Valid() {
		return Mutation{}, &ValidationError{Field: "tier", Message: "must be 0, 1 or 2"}
	}
	if price == nil {
		return Mutation{}, &ValidationError{Field: "price", Message: "tier price not loaded"}
	}
	value := new(big.Int).Set(price)
	return Mutation{
		Action: ActionMint,
		Target: tier.Name(),
		Submit: func(ctx context.Context) (common.Hash, error) {
			return c.Mint(ctx, tx, tier, value)
		},
		Refresh: refresh,
	}, nil
}

// ListInput is the raw list-token form.
type ListInput struct {
	TokenID    *big.Int
	Price      string
	Expiration time.Time
}

// List builds a listToken mutation. Expiration must be in the future.
func List(c Contract, tx chain.Transactor, in ListInput, now time.Time, refresh func(context.Context)) (Mutation, error) {
	if tx == nil {
		return Mutation{}, ErrNotConnected
	}
	if in.TokenID == nil || in.TokenID.Sign() < 0 {
		return Mutation{}, &ValidationError{Field: "tokenId", Message: "required"}
	}
	if strings.TrimSpace(in.Price) == "" {
		return Mutation{}, &ValidationError{Field: "price", Message: "required"}
	}
	price, err := chain.ParseEther(in.Price)
	if err != nil {
		return Mutation{}, &ValidationError{Field: "price", Message: err.Error()}
	}
	if in.Expiration.IsZero() {
		return Mutation{}, &ValidationError{Field: "expiration", Message: "required"}
	}
	if !in.Expiration.After(now) {
		return Mutation{}, &ValidationError{Field: "expiration", Message: "must be in the future"}
	}
	tokenID := new(big.Int).Set(in.TokenID)
	expiration := big.NewInt(in.Expiration.Unix())
	return Mutation{
		Action: ActionList,
		Target: "#" + tokenID.String(),
		Submit: func(ctx context.Context) (common.Hash, error) {
			return c.ListToken(ctx, tx, tokenID, price, expiration)
		},
		Refresh: refresh,
	}, nil
}

// Buy builds a buyToken mutation for a listing that is still purchasable
// at now. refresh should reload the listing set and the user's holdings.
func Buy(c Contract, tx chain.Transactor, listing models.Listing, now time.Time, refresh func(context.Context)) (Mutation, error) {
	if tx == nil {
		return Mutation{}, ErrNotConnected
	}
	if listing.TokenID == nil {
		return Mutation{}, &ValidationError{Field: "tokenId", Message: "required"}
	}
	if !listing.Purchasable(now) {
		return Mutation{}, &ValidationError{Field: "listing", Message: "listing is inactive or expired"}
	}
	tokenID := new(big.Int).Set(listing.TokenID)
	value := new(big.Int).Set(orZero(listing.Price))
	return Mutation{
		Action: ActionBuy,
		Target: "#" + tokenID.String(),
		Submit: func(ctx context.Context) (common.Hash, error) {
			return c.BuyToken(ctx, tx, tokenID, value)
		},
		Refresh: refresh,
	}, nil
}
