package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/repository"
	"gorm.io/gorm"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// GetByUserID retrieves settings by user ID
func (r *settingsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.ShopSettings, error) {
	var settings entity.ShopSettings
	err := conn(ctx, r.db).Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Create creates new shop settings
func (r *settingsRepository) Create(ctx context.Context, settings *entity.ShopSettings) error {
	return conn(ctx, r.db).Create(settings).Error
}

// Update updates existing shop settings
func (r *settingsRepository) Update(ctx context.Context, settings *entity.ShopSettings) error {
	return conn(ctx, r.db).Save(settings).Error
}
