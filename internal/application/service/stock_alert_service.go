package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sangkips/duka-pos/pkg/email"
	"github.com/sirupsen/logrus"
)

// LowStockNotifier delivers low stock alerts to the shop owner
type LowStockNotifier interface {
	SendLowStockAlert(toEmail, storeName string, items []email.LowStockItem) error
}

// StockAlertService tells the owner when a sale leaves products at or below
// their alert quantity
type StockAlertService struct {
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	notifier     LowStockNotifier
	storeName    string
	log          *logrus.Entry
}

// NewStockAlertService creates a new stock alert service
func NewStockAlertService(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	notifier LowStockNotifier,
	storeName string,
	logger *logging.Logger,
) *StockAlertService {
	return &StockAlertService{
		productRepo:  productRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		notifier:     notifier,
		storeName:    storeName,
		log:          logger.Component("stock_alert"),
	}
}

// Check sends one alert listing the given products that are now low on
// stock. It returns the number of products reported.
func (s *StockAlertService) Check(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (int, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	if settings != nil && !settings.LowStockAlerts {
		return 0, nil
	}

	products, err := s.productRepo.GetByIDs(ctx, userID, productIDs)
	if err != nil {
		return 0, fmt.Errorf("load products: %w", err)
	}

	var items []email.LowStockItem
	for i := range products {
		if !products[i].IsLowStock() {
			continue
		}
		items = append(items, email.LowStockItem{
			Name:      products[i].Name,
			Code:      products[i].Code,
			Remaining: products[i].Quantity,
			AlertAt:   products[i].QuantityAlert,
		})
	}
	if len(items) == 0 {
		return 0, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load owner: %w", err)
	}
	if user == nil || user.Email == "" {
		return 0, nil
	}

	storeName := s.storeName
	if user.StoreName != nil && *user.StoreName != "" {
		storeName = *user.StoreName
	}

	if err := s.notifier.SendLowStockAlert(user.Email, storeName, items); err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"products": len(items),
	}).Info("Low stock alert sent")
	return len(items), nil
}
