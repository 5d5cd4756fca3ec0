package tribe

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"tribe-backend/pkg/models"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name      string
		max, cur  int64
		available int64
		soldOut   bool
		pct       int
	}{
		{"unconfigured tier", 0, 0, 0, false, 0},
		{"fresh tier", 10, 0, 10, false, 0},
		{"one third", 3, 1, 2, false, 33},
		{"two thirds", 3, 2, 1, false, 67},
		{"half rounds up", 200, 1, 199, false, 1},
		{"exactly half", 2, 1, 1, false, 50},
		{"sold out", 5, 5, 0, true, 100},
		{"over cap clamps", 4, 5, -1, false, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Derive(models.TierBronze, big.NewInt(tt.max), big.NewInt(tt.cur), big.NewInt(7))
			assert.Equal(t, tt.available, s.Available.Int64())
			assert.Equal(t, tt.soldOut, s.SoldOut)
			assert.Equal(t, tt.pct, s.SoldPercentage)
			assert.Equal(t, 7*tt.cur, s.Revenue.Int64())
		})
	}
}

func TestDeriveNilInputs(t *testing.T) {
	s := Derive(models.TierGold, nil, nil, nil)
	assert.Equal(t, int64(0), s.Available.Int64())
	assert.False(t, s.SoldOut)
	assert.Equal(t, 0, s.SoldPercentage)
	assert.Equal(t, int64(0), s.Revenue.Int64())
}

func TestOwnerStats(t *testing.T) {
	tiers := []TierStats{
		Derive(models.TierBronze, big.NewInt(10), big.NewInt(3), big.NewInt(1e15)),
		Derive(models.TierSilver, big.NewInt(5), big.NewInt(5), big.NewInt(1e16)),
		Derive(models.TierGold, big.NewInt(0), big.NewInt(0), big.NewInt(0)),
	}
	o := NewOwnerStats(tiers)
	assert.Equal(t, int64(8), o.TotalSold.Int64())
	assert.Equal(t, int64(15), o.TotalSupply.Int64())
	assert.Equal(t, int64(3e15+5e16), o.TotalRevenue.Int64())
	assert.Equal(t, "0.0530", o.RevenueText())
}
