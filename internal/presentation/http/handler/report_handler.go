package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/duka-pos/internal/presentation/http/dto/response"
)

// ReportHandler serves sales reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// DailyTotals returns revenue and profit per day in the shop's timezone
func (h *ReportHandler) DailyTotals(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	days, err := h.reportService.DailyTotals(c.Request.Context(), userID, req.From, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Daily totals retrieved successfully", response.NewDailyTotalsResponse(days))
}

// TopProducts returns the best selling products by quantity
func (h *ReportHandler) TopProducts(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	rows, err := h.reportService.TopProducts(c.Request.Context(), userID, req.Days, req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top products retrieved successfully", response.NewTopProductsResponse(rows))
}
