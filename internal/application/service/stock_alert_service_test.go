package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/application/service"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/infrastructure/repository"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/sangkips/duka-pos/internal/testutil"
	"github.com/sangkips/duka-pos/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentAlert struct {
	to    string
	store string
	items []email.LowStockItem
}

type recordingNotifier struct {
	sent []sentAlert
	err  error
}

func (n *recordingNotifier) SendLowStockAlert(to, store string, items []email.LowStockItem) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentAlert{to: to, store: store, items: items})
	return nil
}

func newStockAlerts(db *gorm.DB, notifier service.LowStockNotifier) *service.StockAlertService {
	return service.NewStockAlertService(
		repository.NewProductRepository(db),
		repository.NewUserRepository(db),
		repository.NewSettingsRepository(db),
		notifier,
		"Duka",
		logging.Discard(),
	)
}

func setAlertAt(t *testing.T, db *gorm.DB, p *entity.Product, alertAt int) {
	t.Helper()
	require.NoError(t, db.Model(&entity.Product{}).Where("id = ?", p.ID).Update("quantity_alert", alertAt).Error)
}

func TestStockAlert_ReportsLowProductsOnly(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "owner@duka.test")
	low := testutil.CreateProduct(t, db, user.ID, "Sugar 1kg", 2, 10000, 6000)
	fine := testutil.CreateProduct(t, db, user.ID, "Salt 500g", 40, 3000, 2000)
	setAlertAt(t, db, low, 5)
	setAlertAt(t, db, fine, 5)

	notifier := &recordingNotifier{}
	n, err := newStockAlerts(db, notifier).Check(context.Background(), user.ID, []uuid.UUID{low.ID, fine.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "owner@duka.test", notifier.sent[0].to)
	assert.Equal(t, "Test Duka", notifier.sent[0].store)
	require.Len(t, notifier.sent[0].items, 1)
	assert.Equal(t, "Sugar 1kg", notifier.sent[0].items[0].Name)
	assert.Equal(t, 2, notifier.sent[0].items[0].Remaining)
	assert.Equal(t, 5, notifier.sent[0].items[0].AlertAt)
}

func TestStockAlert_Disabled(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "owner@duka.test")
	p := testutil.CreateProduct(t, db, user.ID, "Sugar 1kg", 0, 10000, 6000)
	require.NoError(t, db.Model(&entity.ShopSettings{}).Where("user_id = ?", user.ID).Update("low_stock_alerts", false).Error)

	notifier := &recordingNotifier{}
	n, err := newStockAlerts(db, notifier).Check(context.Background(), user.ID, []uuid.UUID{p.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, notifier.sent)
}

func TestStockAlert_OtherOwnersProductsIgnored(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@duka.test")
	other := testutil.CreateUser(t, db, "other@duka.test")
	p := testutil.CreateProduct(t, db, other.ID, "Sugar 1kg", 0, 10000, 6000)

	notifier := &recordingNotifier{}
	n, err := newStockAlerts(db, notifier).Check(context.Background(), owner.ID, []uuid.UUID{p.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, notifier.sent)
}

func TestStockAlert_NotifierError(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "owner@duka.test")
	p := testutil.CreateProduct(t, db, user.ID, "Sugar 1kg", 0, 10000, 6000)

	_, err := newStockAlerts(db, &recordingNotifier{err: errors.New("smtp down")}).Check(context.Background(), user.ID, []uuid.UUID{p.ID})
	assert.EqualError(t, err, "smtp down")
}

type chanAlerter struct {
	calls chan []uuid.UUID
	err   error
}

func (a *chanAlerter) Check(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (int, error) {
	a.calls <- ids
	return len(ids), a.err
}

func TestCommit_RunsStockCheckAfterCommit(t *testing.T) {
	f := setupSales(t)
	p1 := testutil.CreateProduct(t, f.db, f.user.ID, "Sugar 1kg", 10, 10000, 6000)
	p2 := testutil.CreateProduct(t, f.db, f.user.ID, "Bread", 10, 6000, 4500)

	alerter := &chanAlerter{calls: make(chan []uuid.UUID, 1), err: errors.New("smtp down")}
	f.sales.SetStockAlerter(alerter)

	c := cartWith(t, map[*entity.Product]int{p1: 1, p2: 2}, p1, p2)
	result, err := f.sales.Commit(context.Background(), c, &f.user.ID, enum.PaymentTypeCash)
	require.NoError(t, err)
	require.NotNil(t, result.Sale)

	select {
	case ids := <-alerter.calls:
		assert.Equal(t, []uuid.UUID{p1.ID, p2.ID}, ids)
	case <-time.After(2 * time.Second):
		t.Fatal("stock check did not run")
	}
}

func TestCommit_NoStockCheckOnFailure(t *testing.T) {
	f := setupSales(t)
	p := testutil.CreateProduct(t, f.db, f.user.ID, "Sugar 1kg", 1, 10000, 6000)

	alerter := &chanAlerter{calls: make(chan []uuid.UUID, 1)}
	f.sales.SetStockAlerter(alerter)

	c := cartWith(t, map[*entity.Product]int{p: 1}, p)
	require.NoError(t, f.db.Model(&entity.Product{}).Where("id = ?", p.ID).Update("quantity", 0).Error)

	_, err := f.sales.Commit(context.Background(), c, &f.user.ID, enum.PaymentTypeCash)
	require.Error(t, err)

	select {
	case <-alerter.calls:
		t.Fatal("stock check ran for a rolled back sale")
	case <-time.After(100 * time.Millisecond):
	}
}
