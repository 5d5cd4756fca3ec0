package database

import (
	"context"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribe-backend/pkg/models"
)

const testTribe = "0xe6308BCDcee3A05aA10031a0f3d112F8Aa77e311"

func TestLocalDatabaseInsertAndFind(t *testing.T) {
	ctx := context.Background()
	db, err := NewLocalDatabase(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))

	for _, b := range []models.Benefit{
		{Tribe: testTribe, BenefitText: "Hello", Tier: models.TierBronze},
		{Tribe: testTribe, BenefitText: "Hello", Tier: models.TierGold},
		{Tribe: "0x0000000000000000000000000000000000000001", BenefitText: "other", Tier: models.TierBronze},
	} {
		b := b
		require.NoError(t, db.InsertBenefit(ctx, &b))
		assert.NotEmpty(t, b.ID)
	}

	found, err := db.FindBenefits(ctx, "0xe6308bcdcee3a05aa10031a0f3d112f8aa77e311", []models.Tier{models.TierBronze})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Hello", found[0].BenefitText)

	none, err := db.FindBenefits(ctx, testTribe, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	err = db.InsertBenefit(ctx, &models.Benefit{Tribe: testTribe, Tier: models.Tier(5)})
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestLocalDatabaseHealth(t *testing.T) {
	dir := t.TempDir()
	db, err := NewLocalDatabase(dir)
	require.NoError(t, err)
	require.NoError(t, db.HealthCheck(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, db.HealthCheck(context.Background()))
}

func TestGroupByTierKeepsEveryKey(t *testing.T) {
	benefits := []models.Benefit{
		{BenefitText: "b", Tier: models.TierBronze},
		{BenefitText: "s1", Tier: models.TierSilver},
		{BenefitText: "s2", Tier: models.TierSilver},
	}
	got := GroupByTier(benefits, []models.Tier{models.TierSilver})
	assert.Equal(t, models.BenefitsByTier{"0": {}, "1": {"s1", "s2"}, "2": {}}, got)
}

func TestTribeVariants(t *testing.T) {
	checksummed := common.HexToAddress(testTribe).Hex()
	v := tribeVariants(" 0xe6308bcdcee3a05aa10031a0f3d112f8aa77e311 ")
	assert.Equal(t, []string{"0xe6308bcdcee3a05aa10031a0f3d112f8aa77e311", checksummed}, v)
	assert.Equal(t, []string{"not-an-address"}, tribeVariants("not-an-address"))
	assert.Equal(t, checksummed, NormalizeTribe("0xE6308BCDCEE3A05AA10031A0F3D112F8AA77E311"))
}

func TestOpenSelectsLocal(t *testing.T) {
	ctx := context.Background()
	pool, err := Open(ctx, DatabaseConfig{UseLocalDB: true, LocalDataDir: t.TempDir()})
	require.NoError(t, err)
	defer pool.Close(ctx)

	assert.Equal(t, "local_file", pool.Type())
	b := models.Benefit{Tribe: testTribe, BenefitText: "x", Tier: models.TierSilver}
	require.NoError(t, pool.InsertBenefit(ctx, &b))
	assert.Equal(t, "local_file", pool.Stats()["type"])

	_, err = Open(ctx, DatabaseConfig{})
	assert.Error(t, err)
}
