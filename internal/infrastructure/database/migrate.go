package database

import (
	"fmt"

	"github.com/sangkips/duka-pos/internal/domain/entity"
	"github.com/sangkips/duka-pos/internal/logging"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order
func Models() []interface{} {
	return []interface{}{
		&entity.User{},
		&entity.ShopSettings{},
		&entity.Category{},
		&entity.Product{},
		&entity.Sale{},
		&entity.SaleItem{},
		&entity.Receipt{},
		&entity.IdempotencyKey{},
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *logging.Logger) error {
	log.Info("Running database migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// SeedOwner creates the shop owner account from ADMIN_EMAIL / ADMIN_PASSWORD
// when both are set and the account does not exist yet.
func SeedOwner(db *gorm.DB, log *logging.Logger) error {
	email := viper.GetString("ADMIN_EMAIL")
	password := viper.GetString("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.WithField("email", email).Info("Owner account already exists")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash owner password: %w", err)
	}

	name := viper.GetString("ADMIN_NAME")
	if name == "" {
		name = "Shop Owner"
	}
	firstName, lastName := name, ""
	for i, c := range name {
		if c == ' ' {
			firstName, lastName = name[:i], name[i+1:]
			break
		}
	}

	owner := entity.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(hashed),
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		if err := tx.Create(&entity.ShopSettings{UserID: owner.ID}).Error; err != nil {
			return err
		}
		log.WithField("email", email).Info("Owner account created")
		return nil
	})
}
