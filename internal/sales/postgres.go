package sales

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"salesdash/internal/constants"
	"salesdash/pkg/metrics"
)

type PostgresRepository struct {
	db    *sql.DB
	table string
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, table: constants.DefaultSalesTable}
}

func (r *PostgresRepository) Name() string { return "postgres" }

func (r *PostgresRepository) Load(ctx context.Context) ([]SaleRecord, error) {
	start := time.Now()
	records, err := r.load(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.IncDatabaseQuery("postgresql", "load_sales", status)
	metrics.ObserveDatabaseQueryDuration("postgresql", "load_sales", time.Since(start))

	return records, err
}

func (r *PostgresRepository) load(ctx context.Context) ([]SaleRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, customer_name, city, shipping_status, customer_received,
		       sale_date, ship_date, receipt_date, delivery_days, delivery_point,
		       tracking_code, sale_value, freight_received, sale_with_freight,
		       purchase_cost, freight_paid, marketplace_fee, total_costs, profit,
		       quantity, product_id, product, notes, hidden, highlighted, marked
		FROM %s
		ORDER BY position, id
	`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var records []SaleRecord
	for rows.Next() {
		var (
			rec          SaleRecord
			status       string
			saleDate     time.Time
			shipDate     sql.NullTime
			receiptDate  sql.NullTime
			deliveryDays sql.NullFloat64
		)
		if err := rows.Scan(
			&rec.ID, &rec.CustomerName, &rec.City, &status, &rec.CustomerReceived,
			&saleDate, &shipDate, &receiptDate, &deliveryDays, &rec.DeliveryPoint,
			&rec.TrackingCode, &rec.SaleValue, &rec.FreightReceived, &rec.SaleWithFreight,
			&rec.PurchaseCost, &rec.FreightPaid, &rec.MarketplaceFee, &rec.TotalCosts, &rec.Profit,
			&rec.Quantity, &rec.ProductID, &rec.Product, &rec.Notes, &rec.Hidden, &rec.Highlighted, &rec.Marked,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		rec.ShippingStatus = ShippingStatus(status)
		rec.SaleDate = saleDate.Format(time.DateOnly)
		if shipDate.Valid {
			rec.ShipDate = strPtr(shipDate.Time.Format(time.DateOnly))
		}
		if receiptDate.Valid {
			rec.ReceiptDate = strPtr(receiptDate.Time.Format(time.DateOnly))
		}
		if deliveryDays.Valid {
			rec.DeliveryDays = floatPtr(deliveryDays.Float64)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}

	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

// Insert writes records in order; used to seed a fresh database.
func (r *PostgresRepository) Insert(ctx context.Context, records []SaleRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, position, customer_name, city, shipping_status, customer_received,
			sale_date, ship_date, receipt_date, delivery_days, delivery_point,
			tracking_code, sale_value, freight_received, sale_with_freight,
			purchase_cost, freight_paid, marketplace_fee, total_costs, profit,
			quantity, product_id, product, notes, hidden, highlighted, marked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`, r.table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.ID, i, rec.CustomerName, rec.City, string(rec.ShippingStatus), rec.CustomerReceived,
			rec.SaleDate, nullString(rec.ShipDate), nullString(rec.ReceiptDate), nullFloat(rec.DeliveryDays), rec.DeliveryPoint,
			rec.TrackingCode, rec.SaleValue, rec.FreightReceived, rec.SaleWithFreight,
			rec.PurchaseCost, rec.FreightPaid, rec.MarketplaceFee, rec.TotalCosts, rec.Profit,
			rec.Quantity, rec.ProductID, rec.Product, rec.Notes, rec.Hidden, rec.Highlighted, rec.Marked,
		); err != nil {
			return fmt.Errorf("failed to insert sale %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
