package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/repository"
	"github.com/sangkips/duka-pos/pkg/apperror"
)

const maxReportRange = 366 * 24 * time.Hour

// DailyTotals are the sales of one local calendar day
type DailyTotals struct {
	Date        string `json:"date"`
	SalesCount  int    `json:"sales_count"`
	TotalAmount int64  `json:"total_amount"`
	TotalProfit int64  `json:"total_profit"`
}

// ReportService computes sales summaries in the shop's timezone
type ReportService struct {
	source       repository.ReportRepository
	settingsRepo repository.SettingsRepository
	now          func() time.Time
}

// NewReportService creates a new report service
func NewReportService(source repository.ReportRepository, settingsRepo repository.SettingsRepository) *ReportService {
	return &ReportService{
		source:       source,
		settingsRepo: settingsRepo,
		now:          time.Now,
	}
}

// SetClock replaces the time source used for default ranges
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// DailyTotals groups the user's sales by local day for the dates from..to,
// both inclusive and formatted as YYYY-MM-DD. Empty dates default to the
// last seven days. Days without sales are included with zero totals.
func (s *ReportService) DailyTotals(ctx context.Context, userID uuid.UUID, from, to string) ([]DailyTotals, error) {
	loc := s.location(ctx, userID)

	start, end, err := s.dateRange(from, to, loc)
	if err != nil {
		return nil, err
	}

	rows, err := s.source.SalesBetween(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	return AggregateDaily(rows, start, end, loc), nil
}

// TopProducts returns the best sellers of the last days days
func (s *ReportService) TopProducts(ctx context.Context, userID uuid.UUID, days, limit int) ([]repository.ProductSalesRow, error) {
	if days <= 0 || days > 366 {
		days = 30
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	loc := s.location(ctx, userID)
	end := startOfDay(s.now().In(loc)).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	rows, err := s.source.TopProducts(ctx, userID, start, end, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []repository.ProductSalesRow{}
	}
	return rows, nil
}

func (s *ReportService) location(ctx context.Context, userID uuid.UUID) *time.Location {
	var settings *entity.ShopSettings
	if s.settingsRepo != nil {
		settings, _ = s.settingsRepo.GetByUserID(ctx, userID)
	}
	return settings.Location()
}

// dateRange resolves inclusive local dates to a half-open [start, end) range
func (s *ReportService) dateRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	today := startOfDay(s.now().In(loc))

	end := today.AddDate(0, 0, 1)
	if to != "" {
		d, err := time.ParseInLocation("2006-01-02", to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.NewBadRequestError("Invalid 'to' date, expected YYYY-MM-DD")
		}
		end = d.AddDate(0, 0, 1)
	}

	start := end.AddDate(0, 0, -7)
	if from != "" {
		d, err := time.ParseInLocation("2006-01-02", from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.NewBadRequestError("Invalid 'from' date, expected YYYY-MM-DD")
		}
		start = d
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, apperror.NewBadRequestError("'from' must not be after 'to'")
	}
	if end.Sub(start) > maxReportRange {
		return time.Time{}, time.Time{}, apperror.NewBadRequestError("Date range must not exceed one year")
	}
	return start, end, nil
}

// AggregateDaily buckets sales into the local days of [start, end)
func AggregateDaily(rows []repository.SaleSummaryRow, start, end time.Time, loc *time.Location) []DailyTotals {
	var days []DailyTotals
	index := make(map[string]int)
	for d := startOfDay(start.In(loc)); d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		index[key] = len(days)
		days = append(days, DailyTotals{Date: key})
	}

	for _, row := range rows {
		i, ok := index[row.SoldAt.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		days[i].SalesCount++
		days[i].TotalAmount += row.TotalAmount
		days[i].TotalProfit += row.TotalProfit
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
