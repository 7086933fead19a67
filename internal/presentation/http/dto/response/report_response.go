package response

import (
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/pkg/money"
)

// DailyTotalsResponse is one day of the sales report
type DailyTotalsResponse struct {
	Date        string  `json:"date"`
	SalesCount  int     `json:"sales_count"`
	TotalAmount float64 `json:"total_amount"`
	TotalProfit float64 `json:"total_profit"`
}

// TopProductResponse is one row of the best sellers report
type TopProductResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
	Profit      float64 `json:"profit"`
}

// NewDailyTotalsResponse converts daily totals
func NewDailyTotalsResponse(days []service.DailyTotals) []DailyTotalsResponse {
	resp := make([]DailyTotalsResponse, 0, len(days))
	for _, d := range days {
		resp = append(resp, DailyTotalsResponse{
			Date:        d.Date,
			SalesCount:  d.SalesCount,
			TotalAmount: money.ToDecimal(d.TotalAmount),
			TotalProfit: money.ToDecimal(d.TotalProfit),
		})
	}
	return resp
}

// NewTopProductsResponse converts best seller rows
func NewTopProductsResponse(rows []repository.ProductSalesRow) []TopProductResponse {
	resp := make([]TopProductResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, TopProductResponse{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			Revenue:     money.ToDecimal(r.Revenue),
			Profit:      money.ToDecimal(r.Profit),
		})
	}
	return resp
}
