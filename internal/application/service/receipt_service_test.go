package service_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/infrastructure/repository"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sangkips/duka-pos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRenderer keeps every document it is given
type recordingRenderer struct {
	mu        sync.Mutex
	rendered  []*entity.ReceiptDocument
	printed   []*entity.ReceiptDocument
	renderErr error
	printErr  error
}

func (r *recordingRenderer) Render(ctx context.Context, doc *entity.ReceiptDocument) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renderErr != nil {
		return "", r.renderErr
	}
	r.rendered = append(r.rendered, doc)
	return "/receipts/" + doc.ReceiptNumber + doc.Format.Extension(), nil
}

func (r *recordingRenderer) Print(ctx context.Context, doc *entity.ReceiptDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printed = append(r.printed, doc)
	return r.printErr
}

func newReceiptService(f *saleFixture, renderer service.DocumentRenderer) *service.ReceiptService {
	return service.NewReceiptService(
		f.receiptRepo,
		f.saleRepo,
		repository.NewUserRepository(f.db),
		repository.NewSettingsRepository(f.db),
		renderer,
		"Fallback Store",
		enum.ReceiptFormatText,
		logging.Discard(),
	)
}

func TestReceiptService_Issue(t *testing.T) {
	f := setupSales(t)
	renderer := &recordingRenderer{}
	receipts := newReceiptService(f, renderer)

	require.NoError(t, f.db.Model(&entity.ShopSettings{}).Where("user_id = ?", f.user.ID).Updates(map[string]interface{}{
		"timezone":       "Africa/Nairobi",
		"receipt_footer": "Asante!",
		"receipt_format": "escpos",
		"print_receipts": true,
	}).Error)

	sale := testutil.CreateSale(t, f.db, f.user.ID)
	info := &service.SaleReceiptInfo{
		SaleID:      sale.ID,
		UserID:      f.user.ID,
		Timestamp:   time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC),
		PaymentType: enum.PaymentTypeCash,
		SubTotal:    20000,
		TotalAmount: 20000,
		Lines: []service.ReceiptLine{
			{Name: "Sugar 1kg", Category: "Dry goods", Quantity: 2, SellingPrice: 10000, CostPrice: 6000},
		},
	}

	rec, err := receipts.Issue(context.Background(), info)
	require.NoError(t, err)
	require.NotNil(t, rec.FilePath)
	assert.Equal(t, enum.ReceiptFormatESCPOS, rec.Format)

	require.Len(t, renderer.rendered, 1)
	doc := renderer.rendered[0]
	assert.Equal(t, "Test Duka", doc.Header.StoreName)
	assert.Equal(t, "Jane Wanjiku", doc.Cashier)
	assert.Equal(t, "2026-03-02 00:30", doc.Date)
	assert.Equal(t, "Asante!", doc.Footer)
	assert.Equal(t, "KES", doc.Currency)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, int64(20000), doc.Items[0].Total)
	assert.Equal(t, "Dry goods", doc.Items[0].Category)

	assert.Len(t, renderer.printed, 1)
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &entity.Receipt{}))
}

func TestReceiptService_PrintFailureIsNotFatal(t *testing.T) {
	f := setupSales(t)
	renderer := &recordingRenderer{printErr: errors.New("paper out")}
	receipts := newReceiptService(f, renderer)

	require.NoError(t, f.db.Model(&entity.ShopSettings{}).Where("user_id = ?", f.user.ID).Update("print_receipts", true).Error)

	sale := testutil.CreateSale(t, f.db, f.user.ID)
	rec, err := receipts.Issue(context.Background(), &service.SaleReceiptInfo{SaleID: sale.ID, UserID: f.user.ID, Timestamp: time.Now()})
	require.NoError(t, err)
	assert.NotNil(t, rec.FilePath)
	assert.Len(t, renderer.printed, 1)
}

func TestReceiptService_FallsBackWithoutProfile(t *testing.T) {
	f := setupSales(t)
	renderer := &recordingRenderer{}
	receipts := newReceiptService(f, renderer)

	// the sale row exists but its owner has no profile or settings
	sale := testutil.CreateSale(t, f.db, f.user.ID)
	_, err := receipts.Issue(context.Background(), &service.SaleReceiptInfo{
		SaleID:    sale.ID,
		UserID:    uuid.New(),
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, renderer.rendered, 1)
	doc := renderer.rendered[0]
	assert.Equal(t, "Fallback Store", doc.Header.StoreName)
	assert.Equal(t, "Thank you for your business!", doc.Footer)
	assert.Equal(t, enum.ReceiptFormatText, doc.Format)
}

func TestReceiptService_RegenerateAfterDegradedCommit(t *testing.T) {
	f := setupSales(t)
	p := testutil.CreateProduct(t, f.db, f.user.ID, "Cooking fat", 10, 25000, 21000)
	p.Category = &entity.Category{Name: "Fats & oils"}

	renderer := &recordingRenderer{renderErr: errors.New("storage unavailable")}
	receipts := newReceiptService(f, renderer)
	sales := f.newSaleService(f.saleItemRepo, receipts)

	c := cartWith(t, map[*entity.Product]int{p: 2}, p)
	result, err := sales.Commit(context.Background(), c, &f.user.ID, enum.PaymentTypeCash)
	require.NoError(t, err)
	require.True(t, result.Degraded())
	firstID := result.Receipt.ID

	renderer.renderErr = nil
	rec, err := receipts.Regenerate(context.Background(), f.user.ID, result.Sale.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.FilePath)
	assert.Equal(t, firstID, rec.ID)
	assert.Equal(t, result.Receipt.ReceiptNumber, rec.ReceiptNumber)

	require.Len(t, renderer.rendered, 1)
	assert.Equal(t, "Cooking fat", renderer.rendered[0].Items[0].Name)
	assert.Equal(t, "Fats & oils", renderer.rendered[0].Items[0].Category)
	assert.Equal(t, int64(50000), renderer.rendered[0].Total)

	stored, err := receipts.GetReceipt(context.Background(), f.user.ID, result.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, *rec.FilePath, *stored.FilePath)
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &entity.Receipt{}))

	// the sale is untouched by receipt work
	sale, err := sales.GetSale(context.Background(), f.user.ID, result.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Sale.TotalAmount, sale.TotalAmount)
}

func TestReceiptService_ScopedToOwner(t *testing.T) {
	f := setupSales(t)
	p := testutil.CreateProduct(t, f.db, f.user.ID, "Sufuria", 3, 80000, 60000)
	c := cartWith(t, map[*entity.Product]int{p: 1}, p)

	result, err := f.sales.Commit(context.Background(), c, &f.user.ID, enum.PaymentTypeCash)
	require.NoError(t, err)

	other := testutil.CreateUser(t, f.db, "other@duka.test")
	_, err = f.receipts.GetReceipt(context.Background(), other.ID, result.Sale.ID)
	assert.Error(t, err)
	_, err = f.receipts.Regenerate(context.Background(), other.ID, result.Sale.ID)
	assert.Error(t, err)

	rec, err := f.receipts.GetReceipt(context.Background(), f.user.ID, result.Sale.ID)
	require.NoError(t, err)
	_, err = os.Stat(*rec.FilePath)
	assert.NoError(t, err)
}
