package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"gorm.io/gorm"
)

// ShopSettings holds per-shop preferences that shape receipts and reports
type ShopSettings struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// General settings
	Timezone string `gorm:"size:50;default:'Africa/Nairobi'" json:"timezone"`
	Currency string `gorm:"size:10;default:'KES'" json:"currency"`

	// Receipt settings
	ReceiptFormat enum.ReceiptFormat `gorm:"size:20;default:'text'" json:"receipt_format"`
	ReceiptFooter string             `gorm:"size:255" json:"receipt_footer"`
	PrintReceipts bool               `gorm:"default:false" json:"print_receipts"`

	// Notifications
	LowStockAlerts bool `gorm:"default:true" json:"low_stock_alerts"`
}

// BeforeCreate generates a UUID before creating new settings
func (s *ShopSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ShopSettings model
func (ShopSettings) TableName() string {
	return "shop_settings"
}

// Location resolves the configured timezone, falling back to UTC.
func (s *ShopSettings) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
