package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/models"
)

// Factory is a typed binding of the TribeFactory contract.
type Factory struct {
	c boundContract
}

// NewFactory binds the factory deployed at address.
func NewFactory(address common.Address, caller ethereum.ContractCaller) *Factory {
	return &Factory{c: boundContract{name: "TribeFactory", address: address, abi: factoryABI, caller: caller}}
}

// Address returns the factory address.
func (f *Factory) Address() common.Address { return f.c.address }

// Tribes returns every tribe created through the factory.
func (f *Factory) Tribes(ctx context.Context) ([]common.Address, error) {
	values, err := f.c.call(ctx, "getTribes")
	if err != nil {
		return nil, err
	}
	out, err := decodeAddresses(values)
	if err != nil {
		return nil, f.c.readErr("getTribes", err)
	}
	return out, nil
}

// CreatorTribes returns the tribes created by creator.
func (f *Factory) CreatorTribes(ctx context.Context, creator common.Address) ([]common.Address, error) {
	values, err := f.c.call(ctx, "getCreatorTribes", creator)
	if err != nil {
		return nil, err
	}
	out, err := decodeAddresses(values)
	if err != nil {
		return nil, f.c.readErr("getCreatorTribes", err)
	}
	return out, nil
}

// CreateTribe submits createTribe. maxSupplies and prices are indexed by tier.
func (f *Factory) CreateTribe(ctx context.Context, tx Transactor, name, description string, maxSupplies, prices models.TierCounts) (common.Hash, error) {
	return f.c.transact(ctx, tx, nil, "createTribe", name, description, toArray(maxSupplies), toArray(prices))
}

func toArray(counts models.TierCounts) [models.TierCount]*big.Int {
	var out [models.TierCount]*big.Int
	for _, t := range models.AllTiers {
		out[t] = counts.Count(t)
	}
	return out
}
