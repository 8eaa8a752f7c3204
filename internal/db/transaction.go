package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTransaction executes fn within a database transaction. The
// transaction commits if fn returns nil and rolls back if fn returns an
// error or panics. Multi-table writes, like removing a video together
// with its markers, go through here.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return fmt.Errorf("transaction failed: %w", err)
		}
		return nil
	})
}
