package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

// Create inserts the sale header only. Items are written one by one by the
// commit engine so each insert is paired with its stock decrement.
func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(sale).Error
}

func (r *saleRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).Scopes(OwnerScope(userID)).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) GetWithDetails(ctx context.Context, userID, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := conn(ctx, r.db).
		Scopes(OwnerScope(userID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Receipt").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, userID uuid.UUID, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := conn(ctx, r.db).Model(&entity.Sale{}).Scopes(OwnerScope(userID))
	if params.StartDate != nil {
		query = query.Where("sold_at >= ?", params.StartDate.UTC())
	}
	if params.EndDate != nil {
		query = query.Where("sold_at < ?", params.EndDate.UTC())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Receipt").
		Order("sold_at DESC, id DESC").
		Find(&sales).Error

	return sales, total, err
}

// ListWithCursor returns sales newest first using keyset pagination on
// (sold_at, id)
func (r *saleRepository) ListWithCursor(ctx context.Context, userID uuid.UUID, params *domainRepo.SaleCursorFilterParams) ([]entity.Sale, error) {
	var sales []entity.Sale

	if params.Cursor == nil {
		params.Cursor = pagination.DefaultCursorParams()
	}
	params.Cursor.Validate()
	query := conn(ctx, r.db).Model(&entity.Sale{}).Scopes(OwnerScope(userID))
	if params.StartDate != nil {
		query = query.Where("sold_at >= ?", params.StartDate.UTC())
	}
	if params.EndDate != nil {
		query = query.Where("sold_at < ?", params.EndDate.UTC())
	}

	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}

	order := "sold_at DESC, id DESC"
	if cursor != nil {
		if params.Cursor.Direction == pagination.CursorDirectionPrev {
			query = query.Where("(sold_at > ? OR (sold_at = ? AND id > ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
			order = "sold_at ASC, id ASC"
		} else {
			query = query.Where("(sold_at < ? OR (sold_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
		}
	}

	// Fetch limit+1 to detect hasMore
	err = query.Limit(params.Cursor.Limit + 1).
		Preload("Receipt").
		Order(order).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}

	if params.Cursor.Direction == pagination.CursorDirectionPrev {
		for i, j := 0, len(sales)-1; i < j; i, j = i+1, j-1 {
			sales[i], sales[j] = sales[j], sales[i]
		}
	}
	return sales, nil
}

type saleItemRepository struct {
	db *gorm.DB
}

// NewSaleItemRepository creates a new sale item repository
func NewSaleItemRepository(db *gorm.DB) domainRepo.SaleItemRepository {
	return &saleItemRepository{db: db}
}

func (r *saleItemRepository) Create(ctx context.Context, item *entity.SaleItem) error {
	return conn(ctx, r.db).Create(item).Error
}

func (r *saleItemRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]entity.SaleItem, error) {
	var items []entity.SaleItem
	err := conn(ctx, r.db).
		Where("sale_id = ?", saleID).
		Order("position ASC").
		Find(&items).Error
	return items, err
}

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

// Upsert keeps exactly one receipt row per sale. A receipt carrying the id
// of an existing row is saved in place.
func (r *receiptRepository) Upsert(ctx context.Context, receipt *entity.Receipt) error {
	if receipt.ID != uuid.Nil {
		return conn(ctx, r.db).Save(receipt).Error
	}
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sale_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"receipt_number", "format", "file_path", "generated_at", "updated_at"}),
	}).Create(receipt).Error
}

func (r *receiptRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := conn(ctx, r.db).First(&receipt, "sale_id = ?", saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}
