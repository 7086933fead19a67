package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sangkips/duka-pos/pkg/apperror"
	"github.com/sangkips/duka-pos/pkg/money"
	"github.com/sangkips/duka-pos/pkg/utils"
	"github.com/sirupsen/logrus"
)

const defaultReceiptFooter = "Thank you for your business!"

// DocumentRenderer turns a receipt document into a stored file and,
// optionally, a printed slip
type DocumentRenderer interface {
	// Render stores the document and returns its location
	Render(ctx context.Context, doc *entity.ReceiptDocument) (string, error)
	// Print sends the document to the configured thermal printer
	Print(ctx context.Context, doc *entity.ReceiptDocument) error
}

// ReceiptService derives, renders and records sale receipts. It never
// modifies a sale.
type ReceiptService struct {
	receiptRepo   repository.ReceiptRepository
	saleRepo      repository.SaleRepository
	userRepo      repository.UserRepository
	settingsRepo  repository.SettingsRepository
	renderer      DocumentRenderer
	storeName     string
	defaultFormat enum.ReceiptFormat
	now           func() time.Time
	log           *logrus.Entry
}

// NewReceiptService creates a new receipt service. storeName is printed when
// the owner has not set one on their profile.
func NewReceiptService(
	receiptRepo repository.ReceiptRepository,
	saleRepo repository.SaleRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	renderer DocumentRenderer,
	storeName string,
	defaultFormat enum.ReceiptFormat,
	logger *logging.Logger,
) *ReceiptService {
	if !defaultFormat.Valid() {
		defaultFormat = enum.ReceiptFormatText
	}
	return &ReceiptService{
		receiptRepo:   receiptRepo,
		saleRepo:      saleRepo,
		userRepo:      userRepo,
		settingsRepo:  settingsRepo,
		renderer:      renderer,
		storeName:     storeName,
		defaultFormat: defaultFormat,
		now:           func() time.Time { return time.Now().UTC() },
		log:           logger.Component("receipt"),
	}
}

// Issue renders the receipt of a committed sale and records it. When
// rendering fails the receipt row is still written, without a file path,
// and an error wrapping ErrReceiptIssuance is returned next to it.
func (s *ReceiptService) Issue(ctx context.Context, info *SaleReceiptInfo) (*entity.Receipt, error) {
	log := s.log.WithField("sale_id", info.SaleID)

	settings := s.settings(ctx, info.UserID, log)
	doc := s.buildDocument(ctx, info, settings, log)

	receipt := &entity.Receipt{
		SaleID:        info.SaleID,
		ReceiptNumber: doc.ReceiptNumber,
		Format:        doc.Format,
		GeneratedAt:   s.now(),
	}

	existing, err := s.receiptRepo.GetBySaleID(ctx, info.SaleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReceiptIssuance, err)
	}
	if existing != nil {
		receipt.ID = existing.ID
		receipt.CreatedAt = existing.CreatedAt
	}

	path, renderErr := s.render(ctx, doc)
	if renderErr == nil {
		receipt.FilePath = &path
	}

	if err := s.receiptRepo.Upsert(ctx, receipt); err != nil {
		return nil, fmt.Errorf("%w: save receipt: %w", ErrReceiptIssuance, err)
	}

	if renderErr != nil {
		log.WithError(renderErr).Warn("Receipt recorded without file")
		return receipt, fmt.Errorf("%w: %w", ErrReceiptIssuance, renderErr)
	}

	if settings != nil && settings.PrintReceipts {
		if err := s.renderer.Print(ctx, doc); err != nil {
			log.WithError(err).Warn("Receipt print failed")
		}
	}

	log.WithField("receipt_number", receipt.ReceiptNumber).Info("Receipt issued")
	return receipt, nil
}

// render calls the renderer, converting a panic into an error
func (s *ReceiptService) render(ctx context.Context, doc *entity.ReceiptDocument) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	path, err = s.renderer.Render(ctx, doc)
	if err == nil && path == "" {
		err = errors.New("renderer returned no location")
	}
	return path, err
}

// Regenerate re-issues the receipt of a stored sale, e.g. after a degraded
// commit left it without a file
func (s *ReceiptService) Regenerate(ctx context.Context, userID, saleID uuid.UUID) (*entity.Receipt, error) {
	sale, err := s.saleRepo.GetWithDetails(ctx, userID, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}

	info := &SaleReceiptInfo{
		SaleID:      sale.ID,
		UserID:      sale.UserID,
		Timestamp:   sale.Timestamp,
		PaymentType: sale.PaymentType,
		SubTotal:    sale.SubTotal,
		TotalAmount: sale.TotalAmount,
		Lines:       make([]ReceiptLine, 0, len(sale.Items)),
	}
	for _, item := range sale.Items {
		info.Lines = append(info.Lines, ReceiptLine{
			Name:         item.ProductName,
			Category:     item.Category,
			Quantity:     item.Quantity,
			SellingPrice: item.UnitPrice,
			CostPrice:    item.CostPrice,
		})
	}

	return s.Issue(ctx, info)
}

// GetReceipt returns the receipt row of a sale owned by userID
func (s *ReceiptService) GetReceipt(ctx context.Context, userID, saleID uuid.UUID) (*entity.Receipt, error) {
	sale, err := s.saleRepo.GetByID(ctx, userID, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}

	receipt, err := s.receiptRepo.GetBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

func (s *ReceiptService) settings(ctx context.Context, userID uuid.UUID, log *logrus.Entry) *entity.ShopSettings {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("Using default receipt settings")
		return nil
	}
	return settings
}

// buildDocument composes the receipt from sale data and the shop's profile.
// Missing profile data falls back to defaults rather than failing.
func (s *ReceiptService) buildDocument(ctx context.Context, info *SaleReceiptInfo, settings *entity.ShopSettings, log *logrus.Entry) *entity.ReceiptDocument {
	doc := &entity.ReceiptDocument{
		Header:        entity.ReceiptHeader{StoreName: s.storeName},
		ReceiptNumber: utils.ReceiptNumber(info.SaleID),
		Date:          info.Timestamp.In(settings.Location()).Format("2006-01-02 15:04"),
		PaymentType:   string(info.PaymentType),
		SubTotal:      info.SubTotal,
		Total:         info.TotalAmount,
		Footer:        defaultReceiptFooter,
		Format:        s.defaultFormat,
		Items:         make([]entity.ReceiptItem, 0, len(info.Lines)),
	}

	if settings != nil {
		doc.Currency = settings.Currency
		if settings.ReceiptFooter != "" {
			doc.Footer = settings.ReceiptFooter
		}
		if settings.ReceiptFormat.Valid() {
			doc.Format = settings.ReceiptFormat
		}
	}

	user, err := s.userRepo.GetByID(ctx, info.UserID)
	if err != nil {
		log.WithError(err).Warn("Using default receipt header")
	}
	if user != nil {
		doc.Cashier = user.FullName()
		if user.StoreName != nil && *user.StoreName != "" {
			doc.Header.StoreName = *user.StoreName
		}
		if user.StoreAddress != nil {
			doc.Header.Address = *user.StoreAddress
		}
		if user.StorePhone != nil {
			doc.Header.Phone = *user.StorePhone
		}
	}

	for _, line := range info.Lines {
		doc.Items = append(doc.Items, entity.ReceiptItem{
			Name:      line.Name,
			Category:  line.Category,
			Quantity:  line.Quantity,
			UnitPrice: line.SellingPrice,
			Total:     money.Mul(line.SellingPrice, line.Quantity),
		})
	}

	return doc
}

func isReceiptIssuance(err error) bool {
	return errors.Is(err, ErrReceiptIssuance)
}
