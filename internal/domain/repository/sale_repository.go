package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/pkg/pagination"
)

// SaleRepository defines the interface for sale header operations. Sales are
// append only, so there is no Update or Delete.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*entity.Sale, error)
	// GetWithDetails loads the sale with its items (in line order) and receipt
	GetWithDetails(ctx context.Context, userID, id uuid.UUID) (*entity.Sale, error)
	List(ctx context.Context, userID uuid.UUID, params *SaleFilterParams) ([]entity.Sale, int64, error)
	ListWithCursor(ctx context.Context, userID uuid.UUID, params *SaleCursorFilterParams) ([]entity.Sale, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	StartDate  *time.Time
	EndDate    *time.Time
}

// SaleCursorFilterParams contains cursor-based filtering for sale queries
type SaleCursorFilterParams struct {
	Cursor    *pagination.CursorParams
	StartDate *time.Time
	EndDate   *time.Time
}

// SaleItemRepository defines the interface for sale line operations
type SaleItemRepository interface {
	Create(ctx context.Context, item *entity.SaleItem) error
	GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]entity.SaleItem, error)
}

// ReceiptRepository defines the interface for receipt metadata operations
type ReceiptRepository interface {
	// Upsert inserts the receipt or replaces the existing row for the same sale
	Upsert(ctx context.Context, receipt *entity.Receipt) error
	GetBySaleID(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error)
}

// Transactor runs fn inside a single database transaction. Repositories
// called with the ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
