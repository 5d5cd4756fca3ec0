package tribe

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"tribe-backend/pkg/models"
)

// maxHoldings bounds the enumeration of one owner's tokens.
const maxHoldings = 1000

// Holdings enumerates the tokens user owns in a tribe with their tiers.
func Holdings(ctx context.Context, c Contract, user common.Address) ([]models.Token, error) {
	balance, err := c.BalanceOf(ctx, user)
	if err != nil {
		return nil, err
	}
	if !balance.IsInt64() || balance.Int64() > maxHoldings {
		return nil, fmt.Errorf("balance %s exceeds %d tokens", balance, maxHoldings)
	}
	n := int(balance.Int64())

	tokens := make([]models.Token, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listingReadConcurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			id, err := c.TokenOfOwnerByIndex(gctx, user, big.NewInt(int64(i)))
			if err != nil {
				return err
			}
			tier, err := c.TokenTier(gctx, id)
			if err != nil {
				return err
			}
			tokens[i] = models.Token{ID: id, Tier: tier, Owner: user}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tokens, nil
}
