package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tribe-backend/pkg/models"
)

// MongoDatabase MongoDB 实现（主存储）
type MongoDatabase struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoDatabase 连接 MongoDB 并 ping 确认
func NewMongoDatabase(ctx context.Context, uri, dbName, collection string) (*MongoDatabase, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(30 * time.Second).
		SetSocketTimeout(45 * time.Second).
		SetServerSelectionTimeout(30 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	slog.Info("connected to mongodb", "database", dbName, "collection", collection)

	return &MongoDatabase{
		client: client,
		coll:   client.Database(dbName).Collection(collection),
	}, nil
}

// InsertBenefit 插入 benefit，tier 以 int32 存储
func (db *MongoDatabase) InsertBenefit(ctx context.Context, b *models.Benefit) error {
	if err := validateBenefit(b); err != nil {
		return err
	}
	doc := models.BenefitDocument{
		Tribe:       b.Tribe,
		BenefitText: b.BenefitText,
		Tier:        int32(b.Tier),
	}
	res, err := db.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert benefit: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid.Hex()
	} else {
		b.ID = fmt.Sprint(res.InsertedID)
	}
	return nil
}

// FindBenefits 查询 tribe + tiers
func (db *MongoDatabase) FindBenefits(ctx context.Context, tribe string, tiers []models.Tier) ([]models.Benefit, error) {
	if len(tiers) == 0 {
		return []models.Benefit{}, nil
	}
	tierValues := make([]int32, 0, len(tiers))
	for _, t := range tiers {
		tierValues = append(tierValues, int32(t))
	}
	filter := bson.M{
		"tribe": bson.M{"$in": tribeVariants(tribe)},
		"tier":  bson.M{"$in": tierValues},
	}

	cursor, err := db.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find benefits: %w", err)
	}
	var docs []models.BenefitDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode benefits: %w", err)
	}

	out := make([]models.Benefit, 0, len(docs))
	for _, d := range docs {
		b, err := d.ToBenefit()
		if err != nil {
			slog.Warn("skipping benefit with invalid tier", "id", d.ID.Hex(), "tier", d.Tier)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// EnsureSchema 创建 (tribe, tier) 复合索引
func (db *MongoDatabase) EnsureSchema(ctx context.Context) error {
	_, err := db.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tribe", Value: 1}, {Key: "tier", Value: 1}},
		Options: options.Index().SetName("tribe_tier"),
	})
	if err != nil {
		return fmt.Errorf("failed to create benefits index: %w", err)
	}
	return nil
}

// HealthCheck 健康检查
func (db *MongoDatabase) HealthCheck(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

// Close 关闭连接
func (db *MongoDatabase) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
