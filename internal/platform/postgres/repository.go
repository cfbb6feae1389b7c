// Package postgres implements the store interfaces against a
// PostgreSQL database using database/sql with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/store"
)

// PostgreSQL error codes
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// qb is the shared statement builder configured for PostgreSQL
// positional placeholders.
var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Table is a generic repository over a single database table. It
// implements store.Repository[E] for any entity whose columns map to
// scannable struct fields.
//
// columns lists the table's columns with the primary key first; fields
// returns pointers into an entity in the same order, so the two slices
// line up for both scanning and insert arguments.
type Table[E any] struct {
	db       store.DBTX
	logger   *slog.Logger
	table    string
	columns  []string
	fields   func(*E) []any
	notFound error
}

// NewTable creates a generic repository for the given table.
// notFound is the entity-specific error returned when a lookup or
// delete matches no row. If log is nil, a default logger is used.
func NewTable[E any](
	db store.DBTX,
	log *slog.Logger,
	table string,
	columns []string,
	fields func(*E) []any,
	notFound error,
) *Table[E] {
	if db == nil {
		panic("db cannot be nil")
	}
	if len(columns) < 2 {
		panic("table needs a primary key column and at least one attribute column")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Table[E]{
		db:       db,
		logger:   log.With(slog.String("component", table+"_repository")),
		table:    table,
		columns:  columns,
		fields:   fields,
		notFound: notFound,
	}
}

// WithDB returns a copy of the repository bound to a different
// connection or transaction.
func (t *Table[E]) WithDB(db store.DBTX) *Table[E] {
	clone := *t
	clone.db = db
	return &clone
}

// List retrieves all rows ordered by primary key.
func (t *Table[E]) List(ctx context.Context) ([]E, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	query, args, err := qb.Select(t.columns...).
		From(t.table).
		OrderBy(t.columns[0]).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list rows",
			slog.String("table", t.table),
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entities []E
	for rows.Next() {
		var entity E
		if err := rows.Scan(t.fields(&entity)...); err != nil {
			log.Error("failed to scan row",
				slog.String("table", t.table),
				slog.String("error", err.Error()))
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entities, nil
}

// Create inserts the entity and sets its database-assigned primary key.
// Unique violations map to store.ErrDuplicate and foreign key
// violations to store.ErrInvalidReference.
func (t *Table[E]) Create(ctx context.Context, entity *E) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	values := t.fields(entity)

	query, args, err := qb.Insert(t.table).
		Columns(t.columns[1:]...).
		Values(values[1:]...).
		Suffix("RETURNING " + t.columns[0]).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	err = t.db.QueryRowContext(ctx, query, args...).Scan(values[0])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolationCode:
				log.Warn("unique violation during insert",
					slog.String("table", t.table),
					slog.String("constraint", pgErr.ConstraintName))
				return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
			case pgForeignKeyViolationCode:
				log.Warn("foreign key violation during insert",
					slog.String("table", t.table),
					slog.String("constraint", pgErr.ConstraintName))
				return fmt.Errorf("%w: %s", store.ErrInvalidReference, pgErr.ConstraintName)
			}
		}

		log.Error("failed to insert row",
			slog.String("table", t.table),
			slog.String("error", err.Error()))
		return err
	}

	log.Debug("row inserted", slog.String("table", t.table))
	return nil
}

// GetOne retrieves the first row matching the predicate.
// The second return value is false when no row matched.
func (t *Table[E]) GetOne(ctx context.Context, pred squirrel.Sqlizer) (E, bool, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	var entity E

	query, args, err := qb.Select(t.columns...).
		From(t.table).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return entity, false, fmt.Errorf("failed to build select query: %w", err)
	}

	err = t.db.QueryRowContext(ctx, query, args...).Scan(t.fields(&entity)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var zero E
			return zero, false, nil
		}
		log.Error("failed to get row",
			slog.String("table", t.table),
			slog.String("error", err.Error()))
		return entity, false, err
	}

	return entity, true, nil
}

// Exists reports whether any row matches the predicate.
func (t *Table[E]) Exists(ctx context.Context, pred squirrel.Sqlizer) (bool, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	query, args, err := qb.Select("1").
		From(t.table).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var one int
	err = t.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		log.Error("failed to check existence",
			slog.String("table", t.table),
			slog.String("error", err.Error()))
		return false, err
	}

	return true, nil
}

// DeleteByID removes the row with the given primary key.
// Returns the table's not-found error when no row matched.
func (t *Table[E]) DeleteByID(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	query, args, err := qb.Delete(t.table).
		Where(squirrel.Eq{t.columns[0]: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete row",
			slog.String("table", t.table),
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Debug("delete matched no rows",
			slog.String("table", t.table),
			slog.Int64("id", id))
		return t.notFound
	}

	log.Debug("row deleted",
		slog.String("table", t.table),
		slog.Int64("id", id))
	return nil
}
