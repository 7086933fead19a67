// Package testutil provides a throwaway SQLite database for tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/internal/config"
	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/domain/enum"
	"github.com/sangkips/duka-pos/internal/infrastructure/database"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in a temporary directory. It is
// closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}
	log := logging.Discard()

	db, err := database.Open(cfg, log, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, log))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a shop owner with default settings
func CreateUser(t *testing.T, db *gorm.DB, email string) *entity.User {
	t.Helper()

	store := "Test Duka"
	user := &entity.User{
		FirstName: "Jane",
		LastName:  "Wanjiku",
		Email:     email,
		StoreName: &store,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&entity.ShopSettings{UserID: user.ID, Timezone: "UTC", Currency: "KES"}).Error)
	return user
}

// CreateProduct inserts a product owned by userID. Prices are in cents.
func CreateProduct(t *testing.T, db *gorm.DB, userID uuid.UUID, name string, quantity int, sellingPrice, costPrice int64) *entity.Product {
	t.Helper()

	product := &entity.Product{
		UserID:       userID,
		Name:         name,
		Code:         "PC-" + uuid.NewString()[:8],
		Quantity:     quantity,
		SellingPrice: sellingPrice,
		CostPrice:    costPrice,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// CreateSale inserts a completed cash sale owned by userID with no items
func CreateSale(t *testing.T, db *gorm.DB, userID uuid.UUID) *entity.Sale {
	t.Helper()

	sale := &entity.Sale{
		UserID:      userID,
		Timestamp:   time.Now().UTC(),
		SubTotal:    20000,
		TotalAmount: 20000,
		TotalProfit: 8000,
		PaymentType: enum.PaymentTypeCash,
		Status:      enum.SaleStatusCompleted,
	}
	require.NoError(t, db.Create(sale).Error)
	return sale
}

// Stock reads the current quantity of a product
func Stock(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()

	var product entity.Product
	require.NoError(t, db.Unscoped().First(&product, "id = ?", productID).Error)
	return product.Quantity
}

// Count returns the number of rows of model
func Count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
