package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tribe-backend/pkg/models"
)

// Pool 显式创建的存储句柄；进程启动时 Open，退出时 Close
type Pool struct {
	store     BenefitStore
	storeType string
	openedAt  time.Time

	mu       sync.RWMutex
	lastUsed time.Time
}

// Open 根据配置选择存储实现：MongoDB > PostgreSQL > 本地文件
func Open(ctx context.Context, cfg DatabaseConfig) (*Pool, error) {
	var (
		store     BenefitStore
		storeType string
		err       error
	)
	switch {
	case cfg.MongoURI != "":
		storeType = "mongodb"
		store, err = NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case cfg.PostgresDSN != "":
		storeType = "postgresql"
		store, err = NewPostgresDatabase(ctx, cfg.PostgresDSN)
	case cfg.UseLocalDB:
		storeType = "local_file"
		store, err = NewLocalDatabase(cfg.LocalDataDir)
	default:
		return nil, fmt.Errorf("no valid database configuration found: set MONGODB_URI, POSTGRES_DSN or USE_LOCAL_DB")
	}
	if err != nil {
		return nil, err
	}
	slog.Info("benefit store opened", "type", storeType)
	return NewPool(store, storeType), nil
}

// NewPool 包装一个已创建的存储
func NewPool(store BenefitStore, storeType string) *Pool {
	now := time.Now()
	return &Pool{store: store, storeType: storeType, openedAt: now, lastUsed: now}
}

// Type 返回存储类型
func (p *Pool) Type() string { return p.storeType }

func (p *Pool) touch() {
	p.mu.Lock()
	p.lastUsed = time.Now()
	p.mu.Unlock()
}

// InsertBenefit implements BenefitStore.
func (p *Pool) InsertBenefit(ctx context.Context, b *models.Benefit) error {
	p.touch()
	return p.store.InsertBenefit(ctx, b)
}

// FindBenefits implements BenefitStore.
func (p *Pool) FindBenefits(ctx context.Context, tribe string, tiers []models.Tier) ([]models.Benefit, error) {
	p.touch()
	return p.store.FindBenefits(ctx, tribe, tiers)
}

// EnsureSchema implements BenefitStore.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	return p.store.EnsureSchema(ctx)
}

// HealthCheck implements BenefitStore.
func (p *Pool) HealthCheck(ctx context.Context) error {
	return p.store.HealthCheck(ctx)
}

// Close implements BenefitStore.
func (p *Pool) Close(ctx context.Context) error {
	slog.Info("closing benefit store", "type", p.storeType)
	return p.store.Close(ctx)
}

// Stats 获取连接统计信息
func (p *Pool) Stats() map[string]interface{} {
	p.mu.RLock()
	lastUsed := p.lastUsed
	p.mu.RUnlock()

	return map[string]interface{}{
		"type":      p.storeType,
		"opened_at": p.openedAt.Format(time.RFC3339),
		"last_used": lastUsed.Format(time.RFC3339),
		"idle":      time.Since(lastUsed).Round(time.Second).String(),
	}
}
