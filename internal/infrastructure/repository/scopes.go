package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

// txKey is the context key carrying the active *gorm.DB transaction
const txKey ctxKey = "gorm_tx"

// withTx stores the transaction handle in ctx
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// txFromContext extracts the active transaction, if any
func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	return tx, ok
}

// conn returns the transaction bound to ctx, or db when there is none.
// Every repository call goes through it so that work started inside
// Transactor.WithinTransaction never escapes the transaction.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// OwnerScope returns a GORM scope that filters by owning user.
// A nil user id yields no rows.
func OwnerScope(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", userID)
	}
}

// likePattern builds a case-insensitive LIKE pattern usable on both
// PostgreSQL and SQLite (paired with LOWER(column)).
func likePattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}
