package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/pkg/apperror"
)

// SettingsService handles settings-related business logic
type SettingsService struct {
	settingsRepo  repository.SettingsRepository
	defaultFormat enum.ReceiptFormat
}

// NewSettingsService creates a new settings service. defaultFormat is the
// receipt format given to shops that never chose one.
func NewSettingsService(settingsRepo repository.SettingsRepository, defaultFormat enum.ReceiptFormat) *SettingsService {
	if !defaultFormat.Valid() {
		defaultFormat = enum.ReceiptFormatText
	}
	return &SettingsService{
		settingsRepo:  settingsRepo,
		defaultFormat: defaultFormat,
	}
}

// GetSettings retrieves shop settings, creating defaults if none exist
func (s *SettingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*entity.ShopSettings, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if settings == nil {
		settings = &entity.ShopSettings{
			UserID:         userID,
			Timezone:       "Africa/Nairobi",
			Currency:       "KES",
			ReceiptFormat:  s.defaultFormat,
			LowStockAlerts: true,
		}
		if err := s.settingsRepo.Create(ctx, settings); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

// UpdateSettingsInput represents the input for updating settings
type UpdateSettingsInput struct {
	UserID         uuid.UUID
	Timezone       string
	Currency       string
	ReceiptFormat  string
	ReceiptFooter  string
	PrintReceipts  bool
	LowStockAlerts bool
}

// UpdateSettings updates shop settings
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.ShopSettings, error) {
	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return nil, apperror.NewBadRequestError("Unknown timezone: " + input.Timezone)
		}
	}
	format := enum.ReceiptFormat(input.ReceiptFormat)
	if input.ReceiptFormat != "" && !format.Valid() {
		return nil, apperror.NewBadRequestError("Receipt format must be text or escpos")
	}

	settings, err := s.GetSettings(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Timezone != "" {
		settings.Timezone = input.Timezone
	}
	if input.Currency != "" {
		settings.Currency = input.Currency
	}
	if input.ReceiptFormat != "" {
		settings.ReceiptFormat = format
	}
	settings.ReceiptFooter = input.ReceiptFooter
	settings.PrintReceipts = input.PrintReceipts
	settings.LowStockAlerts = input.LowStockAlerts

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
