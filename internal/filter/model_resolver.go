package filter

import (
	"context"
	"errors"
	"slices"
)

const (
	multipleToken = "multiple"
	defaultField  = "id"
)

var errNoStore = errors.New("no record store configured")

// resolveModel looks a value up as a record reference.
//
// args[0] is the model id, args[1] the field to match on (default "id"), and
// the token "multiple" anywhere switches to a list result. With the array
// flag set and a list value every record whose field is in the list is
// returned. A singular lookup without a match fails with ErrNotFound.
func (e *Engine) resolveModel(ctx context.Context, args []string, value any, rules Rules) (any, error) {
	if isEmpty(value) {
		return value, nil
	}
	if e.records == nil {
		return nil, errNoStore
	}
	modelID := args[0]
	field := defaultField
	if len(args) > 1 && args[1] != multipleToken {
		field = args[1]
	}

	if rules.isArray() {
		if list, ok := asList(value); ok {
			return e.records.FindIn(ctx, modelID, field, list)
		}
	}
	if slices.Contains(args, multipleToken) {
		return e.records.FindMany(ctx, modelID, field, value)
	}
	rec, err := e.records.FindOne(ctx, modelID, field, value)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
