package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	qb "github.com/riskibarqy/rugby-analytics/internal/platform/querybuilder"
)

var _ record.Store = (*Store)(nil)

// Store is the postgres record.Store. Every unit is one transaction.
type Store struct {
	db     *sqlx.DB
	logger *logging.Logger

	mu      sync.RWMutex
	columns map[record.Entity]record.ColumnSet
}

func NewStore(db *sqlx.DB, logger *logging.Logger) *Store {
	return &Store{
		db:      db,
		logger:  logging.OrDefault(logger).Named("postgres_store"),
		columns: make(map[record.Entity]record.ColumnSet),
	}
}

func (s *Store) WithinUnit(ctx context.Context, name string, fn func(ctx context.Context, session record.Session) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin unit %s: %w", name, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.WarnContext(ctx, "rollback unit failed", "unit", name, "error", rbErr)
			}
		}
	}()

	if err = fn(ctx, &session{store: s, tx: tx}); err != nil {
		return fmt.Errorf("unit %s: %w", name, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit unit %s: %w", name, err)
	}
	return nil
}

type queryer interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// describe reads a table definition once per store.
func (s *Store) describe(ctx context.Context, q queryer, entity record.Entity) (record.ColumnSet, error) {
	if _, err := record.Describe(entity); err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached, ok := s.columns[entity]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	query, args, err := qb.Select("column_name").From("information_schema.columns").
		Where(
			qb.Expr("table_schema = current_schema()"),
			qb.Eq("table_name", string(entity)),
		).
		OrderBy("ordinal_position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build describe %s query: %w", entity, err)
	}

	var names []string
	if err := q.SelectContext(ctx, &names, query, args...); err != nil {
		return nil, fmt.Errorf("describe %s: %w", entity, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: table %s does not exist", record.ErrUnknownEntity, entity)
	}

	columns := record.NewColumnSet(names...)
	s.mu.Lock()
	s.columns[entity] = columns
	s.mu.Unlock()
	return columns, nil
}

type session struct {
	store *Store
	tx    *sqlx.Tx
}

func (s *session) Columns(ctx context.Context, entity record.Entity) (record.ColumnSet, error) {
	columns, err := s.store.describe(ctx, s.tx, entity)
	if err != nil {
		return nil, err
	}
	out := make(record.ColumnSet, len(columns))
	for col := range columns {
		out[col] = struct{}{}
	}
	return out, nil
}

type candidateRow struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	ExternalID string `db:"external_id"`
}

func (s *session) Find(ctx context.Context, entity record.Entity, criteria record.Criteria) ([]record.Candidate, error) {
	desc, err := record.Describe(entity)
	if err != nil {
		return nil, err
	}
	columns, err := s.Columns(ctx, entity)
	if err != nil {
		return nil, err
	}

	nameExpr := "''"
	if desc.NameColumn != "" && columns.Has(desc.NameColumn) {
		nameExpr = "COALESCE(" + desc.NameColumn + "::text, '')"
	}
	externalExpr := "''"
	if desc.ExternalColumn != "" && columns.Has(desc.ExternalColumn) {
		externalExpr = "COALESCE(" + desc.ExternalColumn + "::text, '')"
	}

	query, args, err := qb.Select("id", nameExpr+" AS name", externalExpr+" AS external_id").
		From(string(entity)).
		Where(conditions(criteria)...).
		OrderBy("LOWER("+nameExpr+")", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find %s query: %w", entity, err)
	}

	var rows []candidateRow
	if err := s.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classifyError(err)
	}

	out := make([]record.Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, record.Candidate{ID: row.ID, Name: row.Name, ExternalID: row.ExternalID})
	}
	return out, nil
}

// Insert runs inside a savepoint: a unique violation must leave the unit's
// transaction usable so the caller can look the winning row up.
func (s *session) Insert(ctx context.Context, entity record.Entity, fields record.Fields) (int64, error) {
	if _, err := record.Describe(entity); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, fmt.Errorf("insert %s without fields", entity)
	}

	cols := fields.Columns()
	values := make([]any, 0, len(cols))
	for _, col := range cols {
		values = append(values, sqlValue(fields[col]))
	}
	query, args, err := qb.InsertInto(string(entity)).
		Columns(cols...).
		Values(values...).
		Returning("id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert %s query: %w", entity, err)
	}

	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT record_insert"); err != nil {
		return 0, fmt.Errorf("savepoint: %w", err)
	}
	var id int64
	if err := s.tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		if _, rbErr := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT record_insert"); rbErr != nil {
			return 0, fmt.Errorf("rollback to savepoint after %v: %w", err, rbErr)
		}
		return 0, classifyError(err)
	}
	if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT record_insert"); err != nil {
		return 0, fmt.Errorf("release savepoint: %w", err)
	}
	return id, nil
}

func (s *session) Update(ctx context.Context, entity record.Entity, id int64, fields record.Fields) error {
	if len(fields) == 0 {
		return nil
	}
	n, err := s.update(ctx, entity, []qb.Condition{qb.Eq("id", id)}, fields)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s id=%d does not exist", entity, id)
	}
	return nil
}

func (s *session) UpdateWhere(ctx context.Context, entity record.Entity, criteria record.Criteria, fields record.Fields) (int64, error) {
	if criteria.IsZero() {
		return 0, fmt.Errorf("update %s without criteria", entity)
	}
	return s.update(ctx, entity, conditions(criteria), fields)
}

func (s *session) Delete(ctx context.Context, entity record.Entity, id int64) error {
	if _, err := record.Describe(entity); err != nil {
		return err
	}
	query, args, err := qb.DeleteFrom(string(entity)).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete %s query: %w", entity, err)
	}

	res, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s id=%d does not exist", entity, id)
	}
	return nil
}

func (s *session) update(ctx context.Context, entity record.Entity, where []qb.Condition, fields record.Fields) (int64, error) {
	if _, err := record.Describe(entity); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, nil
	}

	builder := qb.Update(string(entity))
	for _, col := range fields.Columns() {
		builder.Set(col, sqlValue(fields[col]))
	}
	query, args, err := builder.Where(where...).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build update %s query: %w", entity, err)
	}

	res, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classifyError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// conditions renders criteria in column order so identical criteria always
// produce identical SQL.
func conditions(c record.Criteria) []qb.Condition {
	out := make([]qb.Condition, 0)
	for _, col := range c.Equal.Columns() {
		value := c.Equal[col]
		if record.IsNull(value) {
			out = append(out, qb.IsNull(col))
			continue
		}
		out = append(out, qb.Eq(col, sqlValue(value)))
	}
	for _, col := range sortedKeys(c.EqualFold) {
		out = append(out, qb.EqFold(col, c.EqualFold[col]))
	}
	for _, col := range sortedKeys(c.Contains) {
		out = append(out, qb.Contains(col, c.Contains[col]))
	}
	nulls := append([]string(nil), c.IsNull...)
	sort.Strings(nulls)
	for _, col := range nulls {
		out = append(out, qb.IsNull(col))
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
