package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"conferencegateway/internal/metrics"

	"github.com/lib/pq"
)

// querier is the statement surface shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EntityManager provides the low-level SQL primitives shared by the
// repositories: insert with generated id, update and delete by id, lazy
// queries and link-table mutation. Inside WithinTx the primitives run on the
// transaction.
type EntityManager struct {
	DB      *sql.DB
	Logger  *slog.Logger
	Metrics metrics.Recorder

	q  querier
	tx *sql.Tx
}

// NewEntityManager returns an EntityManager. A nil logger or recorder disables that concern.
func NewEntityManager(db *sql.DB, logger *slog.Logger, rec metrics.Recorder) *EntityManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &EntityManager{DB: db, Logger: logger, Metrics: rec, q: db}
}

// WithinTx runs fn with an EntityManager bound to one transaction, committing
// when fn returns nil and rolling back otherwise. Called on a transaction-bound
// manager it joins the outer transaction.
func (em *EntityManager) WithinTx(ctx context.Context, fn func(tx *EntityManager) error) (err error) {
	if em.tx != nil {
		return fn(em)
	}
	tx, err := em.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	bound := *em
	bound.q, bound.tx = tx, tx
	if err = fn(&bound); err != nil {
		return err
	}
	return tx.Commit()
}

func (em *EntityManager) observe(ctx context.Context, op, query string, start time.Time, err error) {
	em.Metrics.ObserveQuery(op, time.Since(start), err)
	if err != nil {
		em.Logger.DebugContext(ctx, "db operation failed", "op", op, "sql", query, "err", err)
		return
	}
	em.Logger.DebugContext(ctx, "db operation", "op", op, "sql", query, "duration_ms", time.Since(start).Milliseconds())
}

func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

// Insert writes one row and returns the identifier assigned by storage.
func (em *EntityManager) Insert(ctx context.Context, table string, columns []string, values []any) (id int64, err error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
		table, strings.Join(columns, ", "), placeholders(1, len(columns)))
	defer func(start time.Time) { em.observe(ctx, "insert", query, start, err) }(time.Now())

	if err = em.q.QueryRowContext(ctx, query, values...).Scan(&id); err != nil {
		return 0, translateError(err)
	}
	return id, nil
}

// Update overwrites columns of the row with the given id and returns the number of affected rows.
func (em *EntityManager) Update(ctx context.Context, table string, columns []string, values []any, id int64) (n int64, err error) {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, table, strings.Join(sets, ", "), len(columns)+1)
	defer func(start time.Time) { em.observe(ctx, "update", query, start, err) }(time.Now())

	args := append(append(make([]any, 0, len(values)+1), values...), id)
	result, err := em.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateError(err)
	}
	return result.RowsAffected()
}

// DeleteByID removes the row with the given id and returns the number of affected rows.
func (em *EntityManager) DeleteByID(ctx context.Context, table string, id int64) (n int64, err error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	defer func(start time.Time) { em.observe(ctx, "delete", query, start, err) }(time.Now())

	result, err := em.q.ExecContext(ctx, query, id)
	if err != nil {
		return 0, translateError(err)
	}
	return result.RowsAffected()
}

// DeleteAll removes every row of table. Not part of the request path.
func (em *EntityManager) DeleteAll(ctx context.Context, table string) (err error) {
	query := fmt.Sprintf(`DELETE FROM %s`, table)
	defer func(start time.Time) { em.observe(ctx, "delete_all", query, start, err) }(time.Now())

	if _, err = em.q.ExecContext(ctx, query); err != nil {
		return translateError(err)
	}
	return nil
}

// UpdateLinkTable replaces every link row of ownerID with one row per distinct
// id in relatedIDs. Delete and insert run in one transaction, the caller's if
// there is one; an empty relatedIDs only clears.
func (em *EntityManager) UpdateLinkTable(ctx context.Context, link LinkTable, ownerID int64, relatedIDs []int64) (err error) {
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, link.Name, link.OwnerColumn)
	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s) SELECT $1, UNNEST($2::bigint[])`,
		link.Name, link.OwnerColumn, link.RelatedColumn)
	defer func(start time.Time) { em.observe(ctx, "update_link_table", link.Name, start, err) }(time.Now())

	return em.WithinTx(ctx, func(tx *EntityManager) error {
		if _, err := tx.q.ExecContext(ctx, deleteQuery, ownerID); err != nil {
			return translateError(err)
		}
		if ids := distinct(relatedIDs); len(ids) > 0 {
			if _, err := tx.q.ExecContext(ctx, insertQuery, ownerID, pq.Array(ids)); err != nil {
				return translateError(err)
			}
		}
		return nil
	})
}

// DeleteFromLinkTable removes every link row whose owner column equals ownerID.
func (em *EntityManager) DeleteFromLinkTable(ctx context.Context, link LinkTable, ownerID int64) (err error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, link.Name, link.OwnerColumn)
	defer func(start time.Time) { em.observe(ctx, "delete_link_table", query, start, err) }(time.Now())

	if _, err = em.q.ExecContext(ctx, query, ownerID); err != nil {
		return translateError(err)
	}
	return nil
}

// Count runs a COUNT query built by SelectBuilder.BuildCount.
func (em *EntityManager) Count(ctx context.Context, query string, args []any) (n int64, err error) {
	defer func(start time.Time) { em.observe(ctx, "count", query, start, err) }(time.Now())

	if err = em.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// queryAll returns a lazy sequence over the rows of query, each converted by
// mapFn. Every iteration re-executes the query; rows are fetched only as the
// consumer pulls them, and breaking out of the loop closes the cursor.
// The recorded latency covers query execution only, not the consumer's work.
func queryAll[T any](ctx context.Context, em *EntityManager, query string, args []any, mapFn func(Row) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		start := time.Now()
		rows, err := em.q.QueryContext(ctx, query, args...)
		em.observe(ctx, "select", query, start, err)
		if err != nil {
			yield(zero, err)
			return
		}
		defer rows.Close()
		defer func() {
			if err != nil {
				em.Logger.DebugContext(ctx, "db row read failed", "sql", query, "err", err)
			}
		}()

		for rows.Next() {
			var row Row
			if row, err = scanRow(rows); err != nil {
				yield(zero, err)
				return
			}
			var v T
			if v, err = mapFn(row); err != nil {
				yield(zero, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err = rows.Err(); err != nil {
			yield(zero, err)
		}
	}
}

// failed returns a sequence that yields err once.
func failed[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

// first returns the first element of seq. ok is false when seq is empty.
func first[T any](seq iter.Seq2[T, error]) (v T, ok bool, err error) {
	for v, err := range seq {
		if err != nil {
			var zero T
			return zero, false, err
		}
		return v, true, nil
	}
	return v, false, nil
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
