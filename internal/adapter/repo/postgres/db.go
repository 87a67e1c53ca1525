// Package postgres implements the storage ports on PostgreSQL.
//
// Every repository works against the PgxPool subset so it can be exercised
// with stubs, and opens one span per method.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func startSpan(ctx context.Context, table, method, operation string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("repo."+table).Start(ctx, table+"."+method)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
	)
	return ctx, span
}

func exists(ctx context.Context, pool PgxPool, op, q string, args ...any) (bool, error) {
	var ok bool
	if err := pool.QueryRow(ctx, q, args...).Scan(&ok); err != nil {
		return false, wrapErr(op, err)
	}
	return ok, nil
}
