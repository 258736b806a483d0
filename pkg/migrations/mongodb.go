package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureSalesCollection creates the indexes the sales loader sorts on.
func EnsureSalesCollection(ctx context.Context, db *mongo.Database, name string) error {
	collection := db.Collection(name)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dataVenda", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_sales_sale_date"),
		},
		{
			Keys:    bson.D{{Key: "envioStatus", Value: 1}},
			Options: options.Index().SetName("idx_sales_shipping_status"),
		},
		{
			Keys:    bson.D{{Key: "idProduto", Value: 1}},
			Options: options.Index().SetName("idx_sales_product_id"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
