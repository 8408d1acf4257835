// Package repository holds the GORM-backed stores. Every method that may run
// inside a service transaction takes a tx argument; a nil tx runs against
// the repository's own connection.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"

	"gorm.io/gorm"
)

func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// translate maps GORM's translated errors onto service error kinds.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierror.NotFound("%s not found", entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierror.Wrap(apierror.KindConflict, err, entity+" already exists")
	default:
		return fmt.Errorf("%s: %w", entity, err)
	}
}

// orderBy returns a descending ORDER BY for a whitelisted sort field,
// qualified with table.
func orderBy(table, sort string) (string, error) {
	if sort == "" {
		sort = "id"
	}
	for _, f := range dto.SortFields {
		if f == sort {
			return fmt.Sprintf("%s.%s DESC", table, f), nil
		}
	}
	return "", apierror.InvalidInput("cannot sort by %q", sort)
}
