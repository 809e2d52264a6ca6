// Package store provides the record lookups used to resolve typed filter
// references ("type:User", "alias:ownerId,User") into actual records.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrUnknownModel = errors.New("unknown model")
	ErrUnknownField = errors.New("unknown field")
)

// Record is a single row keyed by column name.
type Record = map[string]any

// RecordStore resolves records of a model by a single field.
type RecordStore interface {
	// FindOne returns the first record where field == value or ErrNotFound.
	FindOne(ctx context.Context, model, field string, value any) (Record, error)
	// FindMany returns every record where field == value (possibly none).
	FindMany(ctx context.Context, model, field string, value any) ([]Record, error)
	// FindIn returns every record where field is one of values.
	FindIn(ctx context.Context, model, field string, values []any) ([]Record, error)
}

// Table describes where a model lives and which columns may be matched on.
type Table struct {
	Name       string
	PrimaryKey string
	Columns    []string
}

// Catalog maps model identifiers to tables.
type Catalog interface {
	Lookup(model string) (Table, error)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// checkField ensures the field is a plain identifier and, when the table
// declares its columns, one of them.
func (t Table) checkField(field string) error {
	if !identRe.MatchString(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if len(t.Columns) == 0 {
		return nil
	}
	for _, c := range t.Columns {
		if c == field {
			return nil
		}
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownField, t.Name, field)
}
