package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// querier runs a built statement and returns the rows as records.
type querier interface {
	queryRecords(ctx context.Context, sqlStr string, args []any) ([]Record, error)
}

// SQLStore answers lookups with SELECT statements built by squirrel.
type SQLStore struct {
	catalog     Catalog
	q           querier
	placeholder squirrel.PlaceholderFormat
}

// PgxQuerier is satisfied by *pgx.Conn and *pgxpool.Pool.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewPostgres builds a store on top of a pgx connection or pool.
func NewPostgres(conn PgxQuerier, catalog Catalog) *SQLStore {
	return &SQLStore{catalog: catalog, q: pgxQuerier{conn}, placeholder: squirrel.Dollar}
}

// NewSQL builds a store on a database/sql handle (sqlite, pgx stdlib, ...).
func NewSQL(db *sql.DB, catalog Catalog, placeholder squirrel.PlaceholderFormat) *SQLStore {
	return &SQLStore{catalog: catalog, q: sqlQuerier{db}, placeholder: placeholder}
}

func (s *SQLStore) selectFrom(model, field string) (squirrel.SelectBuilder, error) {
	t, err := s.catalog.Lookup(model)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}
	if err := t.checkField(field); err != nil {
		return squirrel.SelectBuilder{}, err
	}
	sb := squirrel.Select("*").From(t.Name).PlaceholderFormat(s.placeholder)
	if t.PrimaryKey != "" {
		sb = sb.OrderBy(t.PrimaryKey)
	}
	return sb, nil
}

func (s *SQLStore) run(ctx context.Context, sb squirrel.SelectBuilder) ([]Record, error) {
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup: %w", err)
	}
	return s.q.queryRecords(ctx, sqlStr, args)
}

func (s *SQLStore) FindOne(ctx context.Context, model, field string, value any) (Record, error) {
	sb, err := s.selectFrom(model, field)
	if err != nil {
		return nil, err
	}
	rows, err := s.run(ctx, sb.Where(squirrel.Eq{field: value}).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s where %s = %v: %w", model, field, value, ErrNotFound)
	}
	return rows[0], nil
}

func (s *SQLStore) FindMany(ctx context.Context, model, field string, value any) ([]Record, error) {
	sb, err := s.selectFrom(model, field)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, sb.Where(squirrel.Eq{field: value}))
}

func (s *SQLStore) FindIn(ctx context.Context, model, field string, values []any) ([]Record, error) {
	sb, err := s.selectFrom(model, field)
	if err != nil {
		return nil, err
	}
	// squirrel разворачивает slice в IN (...), пустой slice даёт (1=0)
	return s.run(ctx, sb.Where(squirrel.Eq{field: values}))
}

type pgxQuerier struct {
	conn PgxQuerier
}

func (p pgxQuerier) queryRecords(ctx context.Context, sqlStr string, args []any) ([]Record, error) {
	rows, err := p.conn.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	out := []Record{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(Record, len(descs))
		for i, d := range descs {
			if i < len(vals) {
				rec[d.Name] = vals[i]
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type sqlQuerier struct {
	db *sql.DB
}

func (q sqlQuerier) queryRecords(ctx context.Context, sqlStr string, args []any) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
