package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/duka-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/duka-pos/pkg/pagination"
)

// SaleHandler serves committed sales and their receipts
type SaleHandler struct {
	saleService    *service.SaleService
	receiptService *service.ReceiptService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService, receiptService *service.ReceiptService) *SaleHandler {
	return &SaleHandler{saleService: saleService, receiptService: receiptService}
}

// List handles listing sales (supports both page-based and cursor-based pagination)
func (h *SaleHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter request.SaleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	start, end, ok := dayBounds(c, filter.From, filter.To)
	if !ok {
		return
	}

	// Check if cursor-based pagination is requested
	if filter.Cursor != "" || filter.Limit > 0 {
		limit := 15
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		direction := pagination.CursorDirectionNext
		if filter.Direction != "" {
			direction = pagination.CursorDirection(filter.Direction)
		}

		result, err := h.saleService.ListSalesWithCursor(c.Request.Context(), userID, &repository.SaleCursorFilterParams{
			Cursor: &pagination.CursorParams{
				Cursor:    filter.Cursor,
				Direction: direction,
				Limit:     limit,
			},
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.SuccessWithCursor(c, http.StatusOK, "Sales retrieved successfully", result)
		return
	}

	result, err := h.saleService.ListSales(c.Request.Context(), userID, &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Sales retrieved successfully", result)
}

// Get returns a sale with its items and receipt
func (h *SaleHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// GetReceipt returns the receipt row of a sale
func (h *SaleHandler) GetReceipt(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// DownloadReceipt streams the rendered receipt file
func (h *SaleHandler) DownloadReceipt(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if receipt.FilePath == nil {
		response.NotFound(c, "Receipt file not available, regenerate it first")
		return
	}

	c.FileAttachment(*receipt.FilePath, receipt.ReceiptNumber+receipt.Format.Extension())
}

// RegenerateReceipt re-renders the receipt of a sale
func (h *SaleHandler) RegenerateReceipt(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "sale")
	if !ok {
		return
	}

	receipt, err := h.receiptService.Regenerate(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt regenerated", receipt)
}

// dayBounds turns inclusive YYYY-MM-DD dates into a half-open UTC range
func dayBounds(c *gin.Context, from, to string) (*time.Time, *time.Time, bool) {
	var start, end *time.Time
	if from != "" {
		t, err := time.Parse(time.DateOnly, from)
		if err != nil {
			response.BadRequest(c, "from must be a date in YYYY-MM-DD format")
			return nil, nil, false
		}
		start = &t
	}
	if to != "" {
		t, err := time.Parse(time.DateOnly, to)
		if err != nil {
			response.BadRequest(c, "to must be a date in YYYY-MM-DD format")
			return nil, nil, false
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	return start, end, true
}
