package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleSummaryRow is the part of a sale header reports need
type SaleSummaryRow struct {
	SoldAt      time.Time `db:"sold_at"`
	TotalAmount int64     `db:"total_amount"`
	TotalProfit int64     `db:"total_profit"`
}

// ProductSalesRow aggregates the sale items of one product
type ProductSalesRow struct {
	ProductID   string `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Quantity    int64  `db:"quantity" json:"quantity"`
	Revenue     int64  `db:"revenue" json:"-"`
	Profit      int64  `db:"profit" json:"-"`
}

// ReportRepository defines read-only aggregate queries over sales
type ReportRepository interface {
	// SalesBetween returns the sales of a user with from <= sold_at < to, oldest first
	SalesBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]SaleSummaryRow, error)
	// TopProducts returns the best selling products by quantity
	TopProducts(ctx context.Context, userID uuid.UUID, from, to time.Time, limit int) ([]ProductSalesRow, error)
}
