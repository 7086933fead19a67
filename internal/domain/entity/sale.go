package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/pkg/money"
	"gorm.io/gorm"
)

// Sale is the immutable header of one committed cart
type Sale struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Timestamp   time.Time        `gorm:"column:sold_at;not null;index" json:"timestamp"`
	SubTotal    int64            `gorm:"not null;default:0" json:"-"` // Stored in cents, excluded from JSON
	TotalAmount int64            `gorm:"not null;default:0" json:"-"` // Stored in cents, excluded from JSON
	TotalProfit int64            `gorm:"not null;default:0" json:"-"` // Stored in cents, excluded from JSON
	PaymentType enum.PaymentType `gorm:"size:50;not null" json:"payment_type"`
	Status      enum.SaleStatus  `gorm:"not null" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`

	// Relationships
	Items   []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	Receipt *Receipt   `gorm:"foreignKey:SaleID" json:"receipt,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		SubTotal    float64 `json:"sub_total"`
		TotalAmount float64 `json:"total_amount"`
		TotalProfit float64 `json:"total_profit"`
	}{
		Alias:       Alias(s),
		SubTotal:    money.ToDecimal(s.SubTotal),
		TotalAmount: money.ToDecimal(s.TotalAmount),
		TotalProfit: money.ToDecimal(s.TotalProfit),
	})
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one product line of a committed sale
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string    `gorm:"size:255;not null" json:"product_name"`
	Category    string    `gorm:"size:255" json:"category,omitempty"`
	Position    int       `gorm:"not null" json:"position"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CostPrice   int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	SubTotal    int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Profit      int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt   time.Time `json:"created_at"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (si SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		CostPrice float64 `json:"cost_price"`
		SubTotal  float64 `json:"sub_total"`
		Profit    float64 `json:"profit"`
	}{
		Alias:     Alias(si),
		UnitPrice: money.ToDecimal(si.UnitPrice),
		CostPrice: money.ToDecimal(si.CostPrice),
		SubTotal:  money.ToDecimal(si.SubTotal),
		Profit:    money.ToDecimal(si.Profit),
	})
}

// BeforeCreate generates a UUID before creating a new sale item
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}
