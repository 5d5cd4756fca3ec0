package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"tribe-backend/pkg/models"
)

// PostgresDatabase PostgreSQL 实现
type PostgresDatabase struct {
	db *sql.DB
}

// NewPostgresDatabase 创建 PostgreSQL 实例
func NewPostgresDatabase(ctx context.Context, dsn string) (*PostgresDatabase, error) {
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresDatabase{db: db}, nil
}

// InsertBenefit 插入 benefit
func (db *PostgresDatabase) InsertBenefit(ctx context.Context, b *models.Benefit) error {
	if err := validateBenefit(b); err != nil {
		return err
	}
	query := `
		INSERT INTO public.benefits (tribe, benefit_text, tier)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	if err := db.db.QueryRowContext(ctx, query, b.Tribe, b.BenefitText, int(b.Tier)).Scan(&id); err != nil {
		return fmt.Errorf("failed to insert benefit: %w", err)
	}
	b.ID = fmt.Sprint(id)
	return nil
}

// FindBenefits 查询 tribe + tiers（tribe 大小写不敏感）
func (db *PostgresDatabase) FindBenefits(ctx context.Context, tribe string, tiers []models.Tier) ([]models.Benefit, error) {
	if len(tiers) == 0 {
		return []models.Benefit{}, nil
	}
	tierValues := make([]int64, 0, len(tiers))
	for _, t := range tiers {
		tierValues = append(tierValues, int64(t))
	}
	query := `
		SELECT id, tribe, benefit_text, tier
		FROM public.benefits
		WHERE lower(tribe) = lower($1) AND tier = ANY($2)
		ORDER BY id
	`
	rows, err := db.db.QueryContext(ctx, query, strings.TrimSpace(tribe), pq.Array(tierValues))
	if err != nil {
		return nil, fmt.Errorf("failed to find benefits: %w", err)
	}
	defer rows.Close()

	out := []models.Benefit{}
	for rows.Next() {
		var (
			id   int64
			tier int
			b    models.Benefit
		)
		if err := rows.Scan(&id, &b.Tribe, &b.BenefitText, &tier); err != nil {
			return nil, fmt.Errorf("failed to scan benefit: %w", err)
		}
		parsed, err := models.ParseTier(int64(tier))
		if err != nil {
			continue
		}
		b.ID = fmt.Sprint(id)
		b.Tier = parsed
		out = append(out, b)
	}
	return out, rows.Err()
}

// EnsureSchema 建表与索引
func (db *PostgresDatabase) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS public.benefits (
			id BIGSERIAL PRIMARY KEY,
			tribe TEXT NOT NULL,
			benefit_text TEXT NOT NULL,
			tier SMALLINT NOT NULL CHECK (tier BETWEEN 0 AND 2),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS benefits_tribe_tier_idx ON public.benefits (lower(tribe), tier)`,
	}
	for _, stmt := range stmts {
		if _, err := db.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// HealthCheck 健康检查
func (db *PostgresDatabase) HealthCheck(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

// Close 关闭连接
func (db *PostgresDatabase) Close(context.Context) error {
	return db.db.Close()
}
