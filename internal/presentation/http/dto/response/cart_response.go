package response

import (
	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/domain/cart"
	"github.com/sangkips/duka-pos/pkg/money"
)

// CartLineResponse is one cart line with decimal amounts
type CartLineResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	SubTotal  float64   `json:"sub_total"`
	Profit    float64   `json:"profit"`
	Available int       `json:"available"`
}

// CartNoticeResponse reports a clamp or a dropped line
type CartNoticeResponse struct {
	ProductID uuid.UUID   `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Notice    cart.Notice `json:"notice,omitempty"`
	Closed    bool        `json:"cart_closed,omitempty"`
}

// CartResponse is the state of a cart after a request
type CartResponse struct {
	ID           uuid.UUID            `json:"id"`
	Lines        []CartLineResponse   `json:"lines"`
	SubTotal     float64              `json:"sub_total"`
	TotalAmount  float64              `json:"total_amount"`
	TotalProfit  float64              `json:"total_profit"`
	ClearPending bool                 `json:"clear_pending"`
	Notices      []CartNoticeResponse `json:"notices,omitempty"`
}

// NewCartResponse converts a cart view
func NewCartResponse(v *service.CartView) *CartResponse {
	resp := &CartResponse{
		ID:           v.ID,
		Lines:        make([]CartLineResponse, 0, len(v.Lines)),
		SubTotal:     money.ToDecimal(v.Totals.SubTotal),
		TotalAmount:  money.ToDecimal(v.Totals.TotalAmount),
		TotalProfit:  money.ToDecimal(v.Totals.TotalProfit),
		ClearPending: v.ClearPending,
	}
	for _, line := range v.Lines {
		resp.Lines = append(resp.Lines, CartLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			Category:  line.Category,
			Quantity:  line.Quantity,
			UnitPrice: money.ToDecimal(line.UnitPrice),
			SubTotal:  money.ToDecimal(line.SubTotal()),
			Profit:    money.ToDecimal(line.Profit()),
			Available: line.Available,
		})
	}
	for _, out := range v.Outcomes {
		if out.Notice == cart.NoticeNone && !out.Closed {
			continue
		}
		resp.Notices = append(resp.Notices, CartNoticeResponse{
			ProductID: out.ProductID,
			Quantity:  out.Quantity,
			Notice:    out.Notice,
			Closed:    out.Closed,
		})
	}
	return resp
}

// CheckoutResponse is returned for a committed sale. ReceiptFilePath is null
// when the receipt could not be rendered; the sale stands either way.
type CheckoutResponse struct {
	SaleID          uuid.UUID `json:"sale_id"`
	ReceiptNumber   string    `json:"receipt_number,omitempty"`
	TotalAmount     float64   `json:"total_amount"`
	TotalProfit     float64   `json:"total_profit"`
	ReceiptFilePath *string   `json:"receipt_file_path"`
	ReceiptError    string    `json:"receipt_error,omitempty"`
}

// NewCheckoutResponse converts a commit result
func NewCheckoutResponse(r *service.CommitResult) *CheckoutResponse {
	resp := &CheckoutResponse{
		SaleID:          r.Sale.ID,
		TotalAmount:     money.ToDecimal(r.Sale.TotalAmount),
		TotalProfit:     money.ToDecimal(r.Sale.TotalProfit),
		ReceiptFilePath: r.ReceiptFilePath(),
	}
	if r.Receipt != nil {
		resp.ReceiptNumber = r.Receipt.ReceiptNumber
	}
	if r.ReceiptErr != nil {
		resp.ReceiptError = r.ReceiptErr.Error()
	}
	return resp
}
