package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

type table struct {
	columns record.ColumnSet
	rows    map[int64]record.Fields
	nextID  int64
}

func (t *table) clone() *table {
	rows := make(map[int64]record.Fields, len(t.rows))
	for id, row := range t.rows {
		rows[id] = row.Merge(nil)
	}
	return &table{columns: t.columns, rows: rows, nextID: t.nextID}
}

func (t *table) sortedIDs() []int64 {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Store is an in-process record.Store. Units are serialized and roll back
// by restoring a snapshot of every table.
type Store struct {
	mu     sync.RWMutex
	tables map[record.Entity]*table
	units  int
}

type Option func(*Store)

// WithColumns replaces the column set of one entity, e.g. to model a
// destination without optional columns.
func WithColumns(entity record.Entity, columns ...string) Option {
	return func(s *Store) {
		if t, ok := s.tables[entity]; ok {
			t.columns = record.NewColumnSet(columns...)
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{tables: make(map[record.Entity]*table, len(defaultColumns))}
	for entity, columns := range defaultColumns {
		s.tables[entity] = &table{
			columns: record.NewColumnSet(columns...),
			rows:    make(map[int64]record.Fields),
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) WithinUnit(ctx context.Context, name string, fn func(ctx context.Context, session record.Session) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[record.Entity]*table, len(s.tables))
	for entity, t := range s.tables {
		snapshot[entity] = t.clone()
	}
	defer func() {
		if p := recover(); p != nil {
			s.tables = snapshot
			panic(p)
		}
		if err != nil {
			s.tables = snapshot
			return
		}
		s.units++
	}()

	if err := fn(ctx, &session{store: s}); err != nil {
		return fmt.Errorf("unit %s: %w", name, err)
	}
	return nil
}

// Count returns the number of rows in entity's table.
func (s *Store) Count(entity record.Entity) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[entity].rows)
}

// Rows returns copies of every row of entity ordered by id.
func (s *Store) Rows(entity record.Entity) []record.Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rowsLocked(entity)
}

// CommittedUnits counts units that committed.
func (s *Store) CommittedUnits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.units
}

func (s *Store) rowsLocked(entity record.Entity) []record.Fields {
	t, ok := s.tables[entity]
	if !ok {
		return nil
	}
	out := make([]record.Fields, 0, len(t.rows))
	for _, id := range t.sortedIDs() {
		out = append(out, t.rows[id].Merge(nil))
	}
	return out
}

// session runs while the store lock is held by WithinUnit.
type session struct {
	store *Store
}

func (s *session) table(entity record.Entity) (*table, error) {
	t, ok := s.store.tables[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", record.ErrUnknownEntity, entity)
	}
	return t, nil
}

func (s *session) Columns(_ context.Context, entity record.Entity) (record.ColumnSet, error) {
	t, err := s.table(entity)
	if err != nil {
		return nil, err
	}
	out := make(record.ColumnSet, len(t.columns))
	for col := range t.columns {
		out[col] = struct{}{}
	}
	return out, nil
}

func (s *session) Find(_ context.Context, entity record.Entity, criteria record.Criteria) ([]record.Candidate, error) {
	t, err := s.table(entity)
	if err != nil {
		return nil, err
	}
	if err := checkCriteriaColumns(t, criteria); err != nil {
		return nil, err
	}
	desc, err := record.Describe(entity)
	if err != nil {
		return nil, err
	}

	out := make([]record.Candidate, 0)
	for _, id := range t.sortedIDs() {
		row := t.rows[id]
		if !matches(row, criteria) {
			continue
		}
		out = append(out, record.Candidate{
			ID:         id,
			Name:       stringValue(row[desc.NameColumn]),
			ExternalID: stringValue(row[desc.ExternalColumn]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *session) Insert(_ context.Context, entity record.Entity, fields record.Fields) (int64, error) {
	t, err := s.table(entity)
	if err != nil {
		return 0, err
	}
	if err := checkColumns(t, fields); err != nil {
		return 0, err
	}

	row := normalizeFields(fields)
	if err := checkUnique(entity, t, 0, row); err != nil {
		return 0, err
	}

	t.nextID++
	row["id"] = t.nextID
	t.rows[t.nextID] = row
	return t.nextID, nil
}

func (s *session) Update(_ context.Context, entity record.Entity, id int64, fields record.Fields) error {
	t, err := s.table(entity)
	if err != nil {
		return err
	}
	row, ok := t.rows[id]
	if !ok {
		return fmt.Errorf("%s id=%d does not exist", entity, id)
	}
	if err := checkColumns(t, fields); err != nil {
		return err
	}

	updated := row.Merge(normalizeFields(fields))
	if err := checkUnique(entity, t, id, updated); err != nil {
		return err
	}
	t.rows[id] = updated
	return nil
}

func (s *session) UpdateWhere(ctx context.Context, entity record.Entity, criteria record.Criteria, fields record.Fields) (int64, error) {
	if criteria.IsZero() {
		return 0, fmt.Errorf("update %s without criteria", entity)
	}
	t, err := s.table(entity)
	if err != nil {
		return 0, err
	}
	if err := checkCriteriaColumns(t, criteria); err != nil {
		return 0, err
	}

	var n int64
	for _, id := range t.sortedIDs() {
		if !matches(t.rows[id], criteria) {
			continue
		}
		if err := s.Update(ctx, entity, id, fields); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *session) Delete(_ context.Context, entity record.Entity, id int64) error {
	t, err := s.table(entity)
	if err != nil {
		return err
	}
	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("%s id=%d does not exist", entity, id)
	}
	delete(t.rows, id)
	return nil
}

func checkColumns(t *table, fields record.Fields) error {
	for col := range fields {
		if !t.columns.Has(col) {
			return fmt.Errorf("%w: %q", record.ErrUndefinedColumn, col)
		}
	}
	return nil
}

func checkCriteriaColumns(t *table, c record.Criteria) error {
	cols := make([]string, 0)
	for col := range c.Equal {
		cols = append(cols, col)
	}
	for col := range c.EqualFold {
		cols = append(cols, col)
	}
	for col := range c.Contains {
		cols = append(cols, col)
	}
	cols = append(cols, c.IsNull...)
	for _, col := range cols {
		if !t.columns.Has(col) {
			return fmt.Errorf("%w: %q", record.ErrUndefinedColumn, col)
		}
	}
	return nil
}

func checkUnique(entity record.Entity, t *table, selfID int64, row record.Fields) error {
	for _, key := range uniqueKeys[entity] {
		if hasNull(row, key) {
			continue
		}
		for id, other := range t.rows {
			if id == selfID || hasNull(other, key) {
				continue
			}
			same := true
			for _, col := range key {
				if !equalValues(row[col], other[col]) {
					same = false
					break
				}
			}
			if same {
				return fmt.Errorf("%w: %s %v conflicts with id=%d", record.ErrDuplicateKey, entity, key, id)
			}
		}
	}
	return nil
}

func hasNull(row record.Fields, cols []string) bool {
	for _, col := range cols {
		if row[col] == nil {
			return true
		}
	}
	return false
}

func matches(row record.Fields, c record.Criteria) bool {
	for col, want := range c.Equal {
		if record.IsNull(want) {
			if row[col] != nil {
				return false
			}
			continue
		}
		if !equalValues(row[col], normalizeValue(want)) {
			return false
		}
	}
	for col, want := range c.EqualFold {
		got, ok := row[col].(string)
		if !ok || !strings.EqualFold(got, want) {
			return false
		}
	}
	for col, want := range c.Contains {
		got, ok := row[col].(string)
		if !ok || !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
			return false
		}
	}
	for _, col := range c.IsNull {
		if row[col] != nil {
			return false
		}
	}
	return true
}
