package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/cart"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sangkips/duka-pos/pkg/apperror"
	"github.com/sangkips/duka-pos/pkg/pagination"
	"github.com/sirupsen/logrus"
)

// ReceiptIssuer produces the receipt of a committed sale
type ReceiptIssuer interface {
	Issue(ctx context.Context, info *SaleReceiptInfo) (*entity.Receipt, error)
}

// StockAlerter is told which products a committed sale drew down
type StockAlerter interface {
	Check(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (int, error)
}

// SaleReceiptInfo is what the commit hands to receipt issuance
type SaleReceiptInfo struct {
	SaleID      uuid.UUID
	UserID      uuid.UUID
	Timestamp   time.Time
	PaymentType enum.PaymentType
	SubTotal    int64
	TotalAmount int64
	Lines       []ReceiptLine
}

// ReceiptLine is one printed line of a receipt
type ReceiptLine struct {
	Name         string
	Category     string
	Quantity     int
	SellingPrice int64
	CostPrice    int64
}

// CommitResult always carries the committed sale. ReceiptErr is set when
// the sale stands but its receipt could not be produced.
type CommitResult struct {
	Sale       *entity.Sale
	Receipt    *entity.Receipt
	ReceiptErr error
}

// Degraded reports whether the sale has no usable receipt file
func (r *CommitResult) Degraded() bool {
	return r.ReceiptErr != nil || r.ReceiptFilePath() == nil
}

// ReceiptFilePath returns the rendered receipt location, or nil
func (r *CommitResult) ReceiptFilePath() *string {
	if r.Receipt == nil {
		return nil
	}
	return r.Receipt.FilePath
}

// SaleService is the only component that turns a cart into durable state
type SaleService struct {
	transactor   repository.Transactor
	saleRepo     repository.SaleRepository
	saleItemRepo repository.SaleItemRepository
	productRepo  repository.ProductRepository
	receipts     ReceiptIssuer
	alerts       StockAlerter
	now          func() time.Time
	log          *logrus.Entry

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewSaleService creates a new sale service
func NewSaleService(
	transactor repository.Transactor,
	saleRepo repository.SaleRepository,
	saleItemRepo repository.SaleItemRepository,
	productRepo repository.ProductRepository,
	receipts ReceiptIssuer,
	logger *logging.Logger,
) *SaleService {
	return &SaleService{
		transactor:   transactor,
		saleRepo:     saleRepo,
		saleItemRepo: saleItemRepo,
		productRepo:  productRepo,
		receipts:     receipts,
		now:          func() time.Time { return time.Now().UTC() },
		log:          logger.Component("sale"),
		inFlight:     make(map[uuid.UUID]struct{}),
	}
}

// SetClock replaces the time source used for sale timestamps
func (s *SaleService) SetClock(now func() time.Time) {
	s.now = func() time.Time { return now().UTC() }
}

// SetStockAlerter enables low stock checks after each commit. Checks run in
// the background and never affect the commit result.
func (s *SaleService) SetStockAlerter(alerts StockAlerter) {
	s.alerts = alerts
}

// Commit persists the cart as one sale: the header, one item per line in
// cart order, and a conditional stock decrement per line, all in a single
// transaction. Any failure rolls everything back and is returned as a
// *CommitError of kind ErrPersistenceFailure; the cart itself is never
// modified. Receipt issuance runs after the commit and cannot fail it.
//
// Commit is not idempotent: two calls with the same cart create two sales.
// Concurrent calls for the same cart are rejected with ErrCommitInProgress.
func (s *SaleService) Commit(ctx context.Context, c *cart.Cart, userID *uuid.UUID, paymentType enum.PaymentType) (*CommitResult, error) {
	if userID == nil || *userID == uuid.Nil {
		return nil, &CommitError{Kind: ErrUnauthenticated}
	}
	if c == nil || c.IsEmpty() {
		return nil, &CommitError{Kind: ErrEmptyCart}
	}
	paymentType, ok := enum.ParsePaymentType(string(paymentType))
	if !ok {
		return nil, &CommitError{Kind: ErrInvalidPaymentType}
	}

	if !s.acquire(c.ID()) {
		return nil, &CommitError{Kind: ErrCommitInProgress}
	}
	defer s.release(c.ID())

	lines := c.Lines()
	sale, items := s.buildSale(*userID, lines, paymentType)

	log := s.log.WithFields(logrus.Fields{
		"sale_id": sale.ID,
		"cart_id": c.ID(),
		"user_id": *userID,
	})

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		for i := range items {
			if err := s.saleItemRepo.Create(ctx, &items[i]); err != nil {
				return fmt.Errorf("insert sale item %d: %w", i, err)
			}
			ok, err := s.productRepo.DecrementIfAvailable(ctx, *userID, items[i].ProductID, items[i].Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock of %s: %w", items[i].ProductID, err)
			}
			if !ok {
				return s.stockFailure(ctx, *userID, &items[i])
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Sale commit rolled back")
		return nil, &CommitError{Kind: ErrPersistenceFailure, Cause: err}
	}

	sale.Items = items
	log.WithFields(logrus.Fields{
		"lines":        len(items),
		"total_amount": sale.TotalAmount,
	}).Info("Sale committed")

	result := &CommitResult{Sale: sale}
	result.Receipt, result.ReceiptErr = s.issueReceipt(context.WithoutCancel(ctx), sale, lines)
	if result.ReceiptErr != nil {
		log.WithError(result.ReceiptErr).Warn("Sale committed without receipt")
	}
	sale.Receipt = result.Receipt

	if s.alerts != nil {
		ids := make([]uuid.UUID, len(items))
		for i := range items {
			ids[i] = items[i].ProductID
		}
		go s.checkStock(context.WithoutCancel(ctx), *userID, ids, log)
	}

	return result, nil
}

// buildSale computes items and header totals from the locked cart prices.
// Header totals are the sums of the items so they always reconcile.
func (s *SaleService) buildSale(userID uuid.UUID, lines []cart.Line, paymentType enum.PaymentType) (*entity.Sale, []entity.SaleItem) {
	sale := &entity.Sale{
		ID:          uuid.New(),
		UserID:      userID,
		Timestamp:   s.now(),
		PaymentType: paymentType,
		Status:      enum.SaleStatusCompleted,
	}

	items := make([]entity.SaleItem, 0, len(lines))
	for i, line := range lines {
		item := entity.SaleItem{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Category:    line.Category,
			Position:    i,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			CostPrice:   line.CostPrice,
			SubTotal:    line.SubTotal(),
			Profit:      line.Profit(),
		}
		sale.SubTotal += item.SubTotal
		sale.TotalProfit += item.Profit
		items = append(items, item)
	}
	sale.TotalAmount = sale.SubTotal

	return sale, items
}

// stockFailure explains a decrement that matched no row. It runs inside the
// transaction so it sees the same state the update did.
func (s *SaleService) stockFailure(ctx context.Context, userID uuid.UUID, item *entity.SaleItem) error {
	stockErr := &StockError{
		ProductID: item.ProductID,
		Name:      item.ProductName,
		Requested: item.Quantity,
		Err:       ErrProductUnavailable,
	}

	product, err := s.productRepo.GetByID(ctx, userID, item.ProductID)
	if err != nil {
		return fmt.Errorf("look up product %s: %w", item.ProductID, err)
	}
	if product != nil {
		stockErr.Available = product.Quantity
		stockErr.Err = ErrInsufficientStock
	}
	return stockErr
}

// issueReceipt runs the receipt pipeline, turning any failure, including a
// panic, into an error wrapping ErrReceiptIssuance.
func (s *SaleService) issueReceipt(ctx context.Context, sale *entity.Sale, lines []cart.Line) (receipt *entity.Receipt, err error) {
	if s.receipts == nil {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrReceiptIssuance, r)
		}
	}()

	info := &SaleReceiptInfo{
		SaleID:      sale.ID,
		UserID:      sale.UserID,
		Timestamp:   sale.Timestamp,
		PaymentType: sale.PaymentType,
		SubTotal:    sale.SubTotal,
		TotalAmount: sale.TotalAmount,
		Lines:       make([]ReceiptLine, 0, len(lines)),
	}
	for _, line := range lines {
		info.Lines = append(info.Lines, ReceiptLine{
			Name:         line.Name,
			Category:     line.Category,
			Quantity:     line.Quantity,
			SellingPrice: line.UnitPrice,
			CostPrice:    line.CostPrice,
		})
	}

	receipt, err = s.receipts.Issue(ctx, info)
	if err != nil && !isReceiptIssuance(err) {
		err = fmt.Errorf("%w: %w", ErrReceiptIssuance, err)
	}
	return receipt, err
}

func (s *SaleService) checkStock(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, log *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Low stock check panicked")
		}
	}()
	if _, err := s.alerts.Check(ctx, userID, ids); err != nil {
		log.WithError(err).Warn("Low stock check failed")
	}
}

func (s *SaleService) acquire(cartID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[cartID]; busy {
		return false
	}
	s.inFlight[cartID] = struct{}{}
	return true
}

func (s *SaleService) release(cartID uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, cartID)
	s.mu.Unlock()
}

// GetSale retrieves a sale with its items and receipt
func (s *SaleService) GetSale(ctx context.Context, userID, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithDetails(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales newest first with page-based pagination
func (s *SaleService) ListSales(ctx context.Context, userID uuid.UUID, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

// ListSalesWithCursor lists sales newest first with cursor-based pagination
func (s *SaleService) ListSalesWithCursor(ctx context.Context, userID uuid.UUID, params *repository.SaleCursorFilterParams) (*pagination.CursorPaginatedResult[entity.Sale], error) {
	sales, err := s.saleRepo.ListWithCursor(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	hasPrev := params.Cursor.Cursor != ""

	cursorPag, items := pagination.NewCursorPagination(sales, params.Cursor.Limit,
		func(sale entity.Sale) string { return sale.ID.String() },
		func(sale entity.Sale) time.Time { return sale.Timestamp },
	)
	cursorPag.HasPrev = hasPrev

	return pagination.NewCursorPaginatedResult(items, cursorPag), nil
}
