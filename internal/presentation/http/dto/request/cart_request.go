package request

import "github.com/google/uuid"

// AddCartItemRequest adds units of a product to a cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"` // Defaults to 1
}

// SetCartItemRequest sets the quantity of a cart line. Zero or less removes it.
type SetCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CheckoutRequest commits a cart as a sale
type CheckoutRequest struct {
	PaymentType string `json:"payment_type" binding:"omitempty,oneof=cash card mobile_money credit"`
}

// SaleFilterRequest represents sale list parameters. Dates are YYYY-MM-DD.
type SaleFilterRequest struct {
	From      string `form:"from"`
	To        string `form:"to"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
	Cursor    string `form:"cursor"`
	Direction string `form:"direction"`
	Limit     int    `form:"limit"` // For cursor-based pagination
}

// ReportRequest represents report range parameters
type ReportRequest struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Days  int    `form:"days"`
	Limit int    `form:"limit"`
}
