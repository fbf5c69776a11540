package services

import (
	"context"

	ierr "github.com/yourusername/invoice-ledger/errors"
	"gorm.io/gorm"
)

// RunInTx runs fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back when it returns an error or
// panics; either way the connection is released before RunInTx returns.
// Errors that are not already classified are surfaced as ErrDatabase with the
// cause attached.
func RunInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if _, ok := ierr.Classify(err); ok {
		return err
	}
	return ierr.WithError(err).
		WithHint("Database error").
		Mark(ierr.ErrDatabase)
}
