package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tribe-backend/pkg/models"
)

// LocalDatabase 本地文件数据库实现（开发/测试用）
type LocalDatabase struct {
	dataDir string
	mu      sync.Mutex
}

// NewLocalDatabase 创建本地数据库实例
func NewLocalDatabase(dataDir string) (*LocalDatabase, error) {
	if dataDir == "" {
		dataDir = "./data"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dataDir, err)
	}
	return &LocalDatabase{dataDir: dataDir}, nil
}

// InsertBenefit 插入 benefit
func (db *LocalDatabase) InsertBenefit(_ context.Context, b *models.Benefit) error {
	if err := validateBenefit(b); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	benefits, err := db.loadAllBenefits()
	if err != nil {
		return err
	}
	b.ID = uuid.New().String()
	benefits = append(benefits, *b)
	return db.saveAllBenefits(benefits)
}

// FindBenefits 查询 tribe + tiers
func (db *LocalDatabase) FindBenefits(_ context.Context, tribe string, tiers []models.Tier) ([]models.Benefit, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	benefits, err := db.loadAllBenefits()
	if err != nil {
		return nil, err
	}
	wanted := map[models.Tier]bool{}
	for _, t := range tiers {
		wanted[t] = true
	}
	out := []models.Benefit{}
	for _, b := range benefits {
		if strings.EqualFold(b.Tribe, strings.TrimSpace(tribe)) && wanted[b.Tier] {
			out = append(out, b)
		}
	}
	return out, nil
}

// EnsureSchema 创建空数据文件
func (db *LocalDatabase) EnsureSchema(context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, err := os.Stat(db.benefitsFilePath()); os.IsNotExist(err) {
		return db.saveAllBenefits([]models.Benefit{})
	}
	return nil
}

// HealthCheck 健康检查
func (db *LocalDatabase) HealthCheck(context.Context) error {
	// 检查数据目录是否可访问
	if _, err := os.Stat(db.dataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s", db.dataDir)
	}
	return nil
}

// Close 关闭连接（本地数据库无需关闭）
func (db *LocalDatabase) Close(context.Context) error {
	return nil
}

// 私有辅助方法

func (db *LocalDatabase) benefitsFilePath() string {
	return filepath.Join(db.dataDir, "benefits.json")
}

func (db *LocalDatabase) loadAllBenefits() ([]models.Benefit, error) {
	data, err := os.ReadFile(db.benefitsFilePath())
	if os.IsNotExist(err) {
		return []models.Benefit{}, nil
	}
	if err != nil {
		return nil, err
	}

	var benefits []models.Benefit
	if err := json.Unmarshal(data, &benefits); err != nil {
		return nil, fmt.Errorf("corrupt %s: %w", db.benefitsFilePath(), err)
	}
	return benefits, nil
}

func (db *LocalDatabase) saveAllBenefits(benefits []models.Benefit) error {
	data, err := json.MarshalIndent(benefits, "", "  ")
	if err != nil {
		return err
	}
	tmp := db.benefitsFilePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, db.benefitsFilePath())
}
