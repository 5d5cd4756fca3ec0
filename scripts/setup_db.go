package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"tribe-backend/pkg/config"
	"tribe-backend/pkg/database"
	"tribe-backend/pkg/models"
)

func main() {
	tribe := flag.String("tribe", "0xe6308BCDcee3A05aA10031a0f3d112F8Aa77e311", "tribe address for the test benefit")
	text := flag.String("text", "Test Benefit", "test benefit text")
	skipInsert := flag.Bool("schema-only", false, "only create the schema, do not insert a test benefit")
	flag.Parse()

	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Printf("🔗 Connecting to %s store\n", cfg.StoreType())

	// 连接数据库
	pool, err := database.Open(ctx, database.ConfigFrom(cfg))
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer pool.Close(context.Background())

	// 测试连接
	if err := pool.HealthCheck(ctx); err != nil {
		log.Fatalf("❌ Health check failed: %v", err)
	}
	fmt.Println("✅ Database connection successful")

	fmt.Println("📄 Ensuring schema and indexes...")
	if err := pool.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Failed to ensure schema: %v", err)
	}
	fmt.Println("✅ Schema ready")

	if *skipInsert {
		return
	}

	fmt.Println("🧪 Inserting test benefit...")
	b := &models.Benefit{
		Tribe:       database.NormalizeTribe(*tribe),
		BenefitText: *text,
		Tier:        models.TierBronze,
	}
	if err := pool.InsertBenefit(ctx, b); err != nil {
		log.Fatalf("❌ Failed to insert test benefit: %v", err)
	}
	fmt.Printf("✅ Inserted test benefit %s for %s (tier %s)\n", b.ID, b.Tribe, b.Tier.Name())

	found, err := pool.FindBenefits(ctx, b.Tribe, []models.Tier{models.TierBronze})
	if err != nil {
		log.Fatalf("❌ Failed to read back benefits: %v", err)
	}
	fmt.Printf("🔍 %d bronze benefit(s) stored for %s\n", len(found), b.Tribe)
	fmt.Println("🎉 Database setup completed! You can now run 'go run ./cmd/tribe-server'.")
}
