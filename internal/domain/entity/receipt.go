package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"gorm.io/gorm"
)

// Receipt records where the rendered document of a sale lives.
// FilePath stays nil when rendering failed; the sale is still valid.
type Receipt struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SaleID        uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"sale_id"`
	ReceiptNumber string             `gorm:"size:50;not null;index" json:"receipt_number"`
	Format        enum.ReceiptFormat `gorm:"size:20;not null" json:"format"`
	FilePath      *string            `gorm:"size:512" json:"file_path"`
	GeneratedAt   time.Time          `gorm:"not null" json:"generated_at"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}

// ReceiptHeader holds the store/business header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Total     int64  `json:"total"`
}

// ReceiptDocument is a value object handed to the renderer.
// It is NOT a database entity; it is composed from sale data at issue time.
type ReceiptDocument struct {
	Header        ReceiptHeader      `json:"header"`
	ReceiptNumber string             `json:"receipt_number"`
	Date          string             `json:"date"`
	Cashier       string             `json:"cashier,omitempty"`
	PaymentType   string             `json:"payment_type,omitempty"`
	Currency      string             `json:"currency,omitempty"`
	Items         []ReceiptItem      `json:"items"`
	SubTotal      int64              `json:"sub_total"`
	Total         int64              `json:"total"`
	Footer        string             `json:"footer,omitempty"`
	Format        enum.ReceiptFormat `json:"format"`
}
