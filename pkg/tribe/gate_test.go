package tribe

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"tribe-backend/pkg/models"
)

func counts(b, s, g int64) models.TierCounts {
	return models.TierCounts{big.NewInt(b), big.NewInt(s), big.NewInt(g)}
}

func TestGate(t *testing.T) {
	assert.Equal(t, Access{}, Gate(nil))

	c := counts(0, 2, 0)
	access := Gate(&c)
	assert.False(t, access.Has(models.TierBronze))
	assert.True(t, access.Has(models.TierSilver))
	assert.False(t, access.Has(models.TierGold))
	assert.True(t, access.Any())
	assert.False(t, access.Has(models.Tier(9)))

	var partial models.TierCounts
	partial[models.TierGold] = big.NewInt(1)
	assert.Equal(t, Access{false, false, true}, Gate(&partial))
}

func TestEvaluateFailsClosed(t *testing.T) {
	ready := readyField(counts(1, 1, 1))

	disconnected := Evaluate(false, ready)
	assert.True(t, disconnected.NeedsConnect())
	assert.False(t, disconnected.Access.Any())

	loading := Evaluate(true, Field[models.TierCounts]{})
	assert.True(t, loading.Loading)
	assert.False(t, loading.Access.Any())

	failed := Evaluate(true, Field[models.TierCounts]{State: FieldFailed})
	assert.False(t, failed.Access.Any())

	open := Evaluate(true, ready)
	assert.False(t, open.Loading)
	assert.Equal(t, Access{true, true, true}, open.Access)
}

func TestIsOwner(t *testing.T) {
	owner := readyField(common.HexToAddress("0xABCDEF0123456789ABCDEF0123456789ABCDEF01"))
	same := common.HexToAddress("0xabcdef0123456789abcdef0123456789abcdef01")
	other := common.HexToAddress("0x0000000000000000000000000000000000000001")

	assert.True(t, IsOwner(owner, &same))
	assert.False(t, IsOwner(owner, &other))
	assert.False(t, IsOwner(owner, nil))
	assert.False(t, IsOwner(Field[common.Address]{}, &same))
}
