package sales

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salesdash/internal/constants"
	"salesdash/pkg/metrics"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(constants.DefaultSalesCollection)}
}

func (r *MongoRepository) Name() string { return "mongodb" }

func (r *MongoRepository) Load(ctx context.Context) ([]SaleRecord, error) {
	start := time.Now()
	records, err := r.load(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IncDatabaseQuery("mongodb", "load_sales", status)
	metrics.ObserveDatabaseQueryDuration("mongodb", "load_sales", time.Since(start))

	return records, err
}

func (r *MongoRepository) load(ctx context.Context) ([]SaleRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dataVenda", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sales: %w", err)
	}
	defer cursor.Close(ctx)

	var records []SaleRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}

	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *MongoRepository) Insert(ctx context.Context, records []SaleRecord) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i, rec := range records {
		docs[i] = rec
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert sales: %w", err)
	}
	return nil
}
