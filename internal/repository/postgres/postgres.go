// Package postgres implements the platform repositories on PostgreSQL with sqlx.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/yourorg/multisafepay-gateway/internal/repository"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables used by the repositories when they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// table describes how criteria map onto one table.
type table struct {
	name     string
	idExpr   string
	filters  map[string]string // criteria field -> column
	selectAs string
}

// selectQuery renders the SELECT for criteria. Unknown filter fields are an error.
func (t table) selectQuery(c repository.Criteria) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	if len(c.IDs) > 0 {
		args = append(args, pq.Array(c.IDs))
		where = append(where, fmt.Sprintf("%s = ANY($%d)", t.idExpr, len(args)))
	}

	fields := make([]string, 0, len(c.Filters))
	for field := range c.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		column, ok := t.filters[field]
		if !ok {
			return "", nil, fmt.Errorf("%s: unsupported filter %q", t.name, field)
		}
		args = append(args, c.Filters[field])
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	var b strings.Builder
	b.WriteString(t.selectAs)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(t.idExpr)
	if c.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", c.Limit)
	}
	return b.String(), args, nil
}

// upsertAll runs fn for each row inside one transaction.
func upsertAll[T any](ctx context.Context, db *sqlx.DB, rows []T, fn func(*sqlx.Tx, T) error) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, row := range rows {
		if err := fn(tx, row); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
