package database

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/config"
	"tribe-backend/pkg/models"
)

// ErrInvalidTier 存储层拒绝非法 tier
var ErrInvalidTier = errors.New("tier must be 0 (Bronze), 1 (Silver), or 2 (Gold)")

// BenefitStore 定义 benefit 存储接口
type BenefitStore interface {
	// InsertBenefit 插入一条记录，并回填 b.ID
	InsertBenefit(ctx context.Context, b *models.Benefit) error
	// FindBenefits 查询某个 tribe 在给定 tiers 下的所有记录
	FindBenefits(ctx context.Context, tribe string, tiers []models.Tier) ([]models.Benefit, error)

	// 建表/建索引（幂等）
	EnsureSchema(ctx context.Context) error

	// 健康检查
	HealthCheck(ctx context.Context) error

	// 关闭连接
	Close(ctx context.Context) error
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	PostgresDSN     string
	UseLocalDB      bool
	LocalDataDir    string
}

// ConfigFrom 从应用配置构造数据库配置
func ConfigFrom(cfg *config.Config) DatabaseConfig {
	return DatabaseConfig{
		MongoURI:        cfg.MongoURI,
		MongoDatabase:   cfg.MongoDatabase,
		MongoCollection: cfg.MongoCollection,
		PostgresDSN:     cfg.PostgresDSN,
		UseLocalDB:      cfg.UseLocalDB,
		LocalDataDir:    cfg.LocalDataDir,
	}
}

// NormalizeTribe returns the checksummed form of a hex address, or the
// trimmed input when it is not one.
func NormalizeTribe(tribe string) string {
	tribe = strings.TrimSpace(tribe)
	if common.IsHexAddress(tribe) {
		return common.HexToAddress(tribe).Hex()
	}
	return tribe
}

// tribeVariants lists the spellings a tribe may have been stored under.
// Older records keep whatever case the poster sent.
func tribeVariants(tribe string) []string {
	tribe = strings.TrimSpace(tribe)
	seen := map[string]struct{}{}
	var out []string
	for _, v := range []string{tribe, strings.ToLower(tribe), NormalizeTribe(tribe)} {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func validateBenefit(b *models.Benefit) error {
	if b == nil {
		return errors.New("nil benefit")
	}
	if !b.Tier.Valid() {
		return ErrInvalidTier
	}
	if strings.TrimSpace(b.Tribe) == "" {
		return errors.New("tribe is required")
	}
	return nil
}

// GroupByTier 按 tier 分组，只保留 unlocked 的 tier；三个 key 始终存在
func GroupByTier(benefits []models.Benefit, unlocked []models.Tier) models.BenefitsByTier {
	out := models.NewBenefitsByTier()
	allowed := map[models.Tier]bool{}
	for _, t := range unlocked {
		allowed[t] = true
	}
	for _, b := range benefits {
		if !allowed[b.Tier] {
			continue
		}
		out[b.Tier.Key()] = append(out[b.Tier.Key()], b.BenefitText)
	}
	return out
}
