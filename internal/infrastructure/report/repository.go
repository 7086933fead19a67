// Package report runs read-only aggregate queries over committed sales.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sangkips/duka-pos/internal/domain/repository"
)

// Repository reads sales with plain SQL so the same queries run on SQLite
// and PostgreSQL
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new report repository
func NewRepository(db *sqlx.DB) repository.ReportRepository {
	return &Repository{db: db}
}

// SalesBetween returns the sales of a user with from <= sold_at < to,
// oldest first
func (r *Repository) SalesBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]repository.SaleSummaryRow, error) {
	query := r.db.Rebind(`
		SELECT sold_at, total_amount, total_profit
		FROM sales
		WHERE user_id = ? AND sold_at >= ? AND sold_at < ?
		ORDER BY sold_at ASC`)

	var rows []repository.SaleSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID.String(), from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	return rows, nil
}

// TopProducts returns the best selling products of a user by quantity
func (r *Repository) TopProducts(ctx context.Context, userID uuid.UUID, from, to time.Time, limit int) ([]repository.ProductSalesRow, error) {
	query := r.db.Rebind(`
		SELECT si.product_id AS product_id,
			MAX(si.product_name) AS product_name,
			SUM(si.quantity) AS quantity,
			SUM(si.sub_total) AS revenue,
			SUM(si.profit) AS profit
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.user_id = ? AND s.sold_at >= ? AND s.sold_at < ?
		GROUP BY si.product_id
		ORDER BY quantity DESC, revenue DESC
		LIMIT ?`)

	var rows []repository.ProductSalesRow
	if err := r.db.SelectContext(ctx, &rows, query, userID.String(), from.UTC(), to.UTC(), limit); err != nil {
		return nil, fmt.Errorf("select top products: %w", err)
	}
	return rows, nil
}
