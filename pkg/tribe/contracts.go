// Package tribe implements the client-side read, derive and mutate
// protocol against tribe and factory contracts.
package tribe

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
)

// Contract is the tribe contract surface used by the protocol.
// *chain.Tribe implements it.
type Contract interface {
	Address() common.Address
	Name(ctx context.Context) (string, error)
	Description(ctx context.Context) (string, error)
	Owner(ctx context.Context) (common.Address, error)
	MaxSupply(ctx context.Context, tier models.Tier) (*big.Int, error)
	CurrentSupply(ctx context.Context, tier models.Tier) (*big.Int, error)
	Price(ctx context.Context, tier models.Tier) (*big.Int, error)
	MemberTiers(ctx context.Context, user common.Address) (models.TierCounts, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error)
	TokenTier(ctx context.Context, tokenID *big.Int) (models.Tier, error)
	ActiveListings(ctx context.Context) ([]*big.Int, error)
	Listing(ctx context.Context, tokenID *big.Int) (models.Listing, error)

	Mint(ctx context.Context, tx chain.Transactor, tier models.Tier, value *big.Int) (common.Hash, error)
	ListToken(ctx context.Context, tx chain.Transactor, tokenID, price, expiration *big.Int) (common.Hash, error)
	BuyToken(ctx context.Context, tx chain.Transactor, tokenID, value *big.Int) (common.Hash, error)
}

// Factory is the factory contract surface. *chain.Factory implements it.
type Factory interface {
	Tribes(ctx context.Context) ([]common.Address, error)
	CreatorTribes(ctx context.Context, creator common.Address) ([]common.Address, error)
	CreateTribe(ctx context.Context, tx chain.Transactor, name, description string, maxSupplies, prices models.TierCounts) (common.Hash, error)
}

var (
	_ Contract = (*chain.Tribe)(nil)
	_ Factory  = (*chain.Factory)(nil)
)
