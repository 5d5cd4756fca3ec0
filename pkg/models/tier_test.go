package models

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	for _, v := range []int64{0, 1, 2} {
		tier, err := ParseTier(v)
		require.NoError(t, err)
		assert.Equal(t, Tier(v), tier)
	}
	for _, v := range []int64{-1, 3, 5} {
		_, err := ParseTier(v)
		assert.Error(t, err)
	}
}

func TestTierCountsParseAndRender(t *testing.T) {
	counts, err := ParseTierCounts([]string{"0", "2", "0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2", "0"}, counts.Strings())
	assert.Equal(t, int64(2), counts.Count(TierSilver).Int64())

	_, err = ParseTierCounts([]string{"1", "2"})
	assert.Error(t, err)
	_, err = ParseTierCounts([]string{"1", "x", "0"})
	assert.Error(t, err)
}

func TestNewBenefitsByTierHasEveryKey(t *testing.T) {
	b := NewBenefitsByTier()
	for _, key := range []string{"0", "1", "2"} {
		v, ok := b[key]
		require.True(t, ok, key)
		assert.Empty(t, v)
	}
}

func TestListingPurchasable(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	future := big.NewInt(now.Unix() + 60)
	past := big.NewInt(now.Unix() - 60)

	assert.True(t, Listing{Active: true, Expiration: future}.Purchasable(now))
	assert.False(t, Listing{Active: false, Expiration: future}.Purchasable(now))
	assert.False(t, Listing{Active: true, Expiration: past}.Purchasable(now))
	// expiration == now counts as expired
	assert.False(t, Listing{Active: true, Expiration: big.NewInt(now.Unix())}.Purchasable(now))
	assert.False(t, Listing{Active: true}.Purchasable(now))
}
