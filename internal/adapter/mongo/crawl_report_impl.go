package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/repository"
)

const crawlReportsCollection = "crawl_reports"

// CrawlReportRepoImpl archives finished crawls, one document per run.
type CrawlReportRepoImpl struct {
	reports *mongo.Collection
}

// Connect opens a client, pings it and returns the named database.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}
	return client, client.Database(database), nil
}

func NewCrawlReportRepo(ctx context.Context, db *mongo.Database) (*CrawlReportRepoImpl, error) {
	reports := db.Collection(crawlReportsCollection)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := reports.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "base_url", Value: 1}, {Key: "analyzed_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("can't create crawl report index: %w", err)
	}
	return &CrawlReportRepoImpl{reports: reports}, nil
}

func (r *CrawlReportRepoImpl) Save(ctx context.Context, result *entity.CrawlResult) error {
	_, err := r.reports.InsertOne(ctx, result)
	return err
}

func (r *CrawlReportRepoImpl) Latest(ctx context.Context, baseURL string) (*entity.CrawlResult, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "analyzed_at", Value: -1}})

	var result entity.CrawlResult
	err := r.reports.FindOne(ctx, bson.M{"base_url": baseURL}, opts).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
