package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/cart"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/pkg/apperror"
	"github.com/sangkips/duka-pos/pkg/money"
	"github.com/sangkips/duka-pos/pkg/pagination"
	"github.com/sangkips/duka-pos/pkg/utils"
)

// ProductService handles product-related operations. It is also the
// inventory snapshot provider the cart reconciles against.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	UserID        uuid.UUID
	CategoryID    *uuid.UUID
	Name          string
	Code          string
	Quantity      int
	QuantityAlert int
	CostPrice     float64
	SellingPrice  float64
	Notes         *string
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if err := validateStockAndPrices(input.Quantity, input.CostPrice, input.SellingPrice); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.UserID, input.CategoryID); err != nil {
		return nil, err
	}

	// Auto-generate code if not provided
	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = utils.GenerateProductCode()
	}

	existing, err := s.productRepo.GetByCode(ctx, input.UserID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product code already exists")
	}

	product := &entity.Product{
		UserID:        input.UserID,
		CategoryID:    input.CategoryID,
		Name:          strings.TrimSpace(input.Name),
		Code:          code,
		Quantity:      input.Quantity,
		QuantityAlert: input.QuantityAlert,
		CostPrice:     money.FromDecimal(input.CostPrice),
		SellingPrice:  money.FromDecimal(input.SellingPrice),
		Notes:         input.Notes,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, input.UserID, product.ID)
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, userID, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, userID uuid.UUID, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input. Nil fields are
// left untouched.
type UpdateProductInput struct {
	UserID        uuid.UUID
	ProductID     uuid.UUID
	CategoryID    *uuid.UUID
	Name          *string
	Code          *string
	Quantity      *int
	QuantityAlert *int
	CostPrice     *float64
	SellingPrice  *float64
	Notes         *string
}

// UpdateProduct edits or restocks a product. Price changes do not affect
// lines already sitting in a cart.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, input.UserID, input.ProductID)
	if err != nil {
		return nil, err
	}

	if input.Code != nil && *input.Code != product.Code {
		existing, err := s.productRepo.GetByCode(ctx, input.UserID, *input.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != product.ID {
			return nil, apperror.NewConflictError("Product code already exists")
		}
		product.Code = *input.Code
	}

	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, input.UserID, input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
		product.Category = nil
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.QuantityAlert != nil {
		product.QuantityAlert = *input.QuantityAlert
	}
	if input.CostPrice != nil {
		product.CostPrice = money.FromDecimal(*input.CostPrice)
	}
	if input.SellingPrice != nil {
		product.SellingPrice = money.FromDecimal(*input.SellingPrice)
	}
	if input.Notes != nil {
		product.Notes = input.Notes
	}

	if product.Quantity < 0 || product.CostPrice < 0 || product.SellingPrice < 0 {
		return nil, apperror.NewBadRequestError("Quantity and prices must not be negative")
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, input.UserID, product.ID)
}

// DeleteProduct soft-deletes a product. Past sale items keep their snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, userID, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, userID, id)
}

// GetLowStockProducts returns products with low stock
func (s *ProductService) GetLowStockProducts(ctx context.Context, userID uuid.UUID) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx, userID)
}

// Snapshots reads the current inventory state of the given products. Ids
// that are missing from the result no longer exist for this user.
func (s *ProductService) Snapshots(ctx context.Context, userID uuid.UUID, ids ...uuid.UUID) ([]cart.Snapshot, error) {
	products, err := s.productRepo.GetByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	snapshots := make([]cart.Snapshot, 0, len(products))
	for i := range products {
		snapshots = append(snapshots, ToSnapshot(&products[i]))
	}
	return snapshots, nil
}

// ToSnapshot converts a product row into the cart's view of it
func ToSnapshot(p *entity.Product) cart.Snapshot {
	return cart.Snapshot{
		ProductID:    p.ID,
		Name:         p.Name,
		Category:     p.CategoryName(),
		SellingPrice: p.SellingPrice,
		CostPrice:    p.CostPrice,
		Quantity:     p.Quantity,
	}
}

func (s *ProductService) checkCategory(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	category, err := s.categoryRepo.GetByID(ctx, userID, *categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}
	return nil
}

func validateStockAndPrices(quantity int, cost, selling float64) error {
	var fieldErrors []apperror.FieldError
	if quantity < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "must not be negative"})
	}
	if cost < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "cost_price", Message: "must not be negative"})
	}
	if selling < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "selling_price", Message: "must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}
