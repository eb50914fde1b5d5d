package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

// IdempotentWriter performs natural-key upserts that tolerate destinations
// with different optional column sets. Column sets are cached for the
// lifetime of the writer, so one writer should not outlive a schema change.
type IdempotentWriter struct {
	mu      sync.Mutex
	columns map[record.Entity]record.ColumnSet
	logger  *logging.Logger
}

func NewIdempotentWriter(logger *logging.Logger) *IdempotentWriter {
	return &IdempotentWriter{
		columns: make(map[record.Entity]record.ColumnSet),
		logger:  logging.OrDefault(logger),
	}
}

// Upsert writes req through session:
//  1. a row matching req.Key is updated with the supported fields
//  2. else a row matching req.Fallback is updated, natural key included
//  3. else a row is inserted
func (w *IdempotentWriter) Upsert(ctx context.Context, session record.Session, req record.Upsert) (int64, record.Outcome, error) {
	desc, err := record.Describe(req.Entity)
	if err != nil {
		return 0, "", err
	}

	supported, err := w.supportedColumns(ctx, session, req.Entity)
	if err != nil {
		return 0, "", err
	}
	if err := requireColumns(desc, supported, req.Key); err != nil {
		return 0, "", err
	}

	fields := w.filterFields(ctx, req.Entity, supported, req.Fields)
	keyed := fields.Merge(nonNullFields(req.Key))

	if !req.Key.Empty() {
		candidates, err := session.Find(ctx, req.Entity, record.Criteria{Equal: req.Key})
		if err != nil {
			return 0, "", fmt.Errorf("find %s by natural key: %w", req.Entity, err)
		}
		if len(candidates) > 0 {
			if len(candidates) > 1 {
				w.logger.WarnContext(ctx, "natural key matched several rows",
					"entity", string(req.Entity), "rows", len(candidates), "picked_id", candidates[0].ID)
			}
			if err := w.update(ctx, session, req.Entity, candidates[0].ID, fields); err != nil {
				return 0, "", err
			}
			return candidates[0].ID, record.OutcomeUpdatedByID, nil
		}
	}

	if req.Fallback != nil {
		fallback := filterCriteria(*req.Fallback, supported)
		if !fallback.IsZero() {
			candidates, err := session.Find(ctx, req.Entity, fallback)
			if err != nil {
				return 0, "", fmt.Errorf("find %s by fallback: %w", req.Entity, err)
			}
			if len(candidates) > 0 {
				if err := w.update(ctx, session, req.Entity, candidates[0].ID, keyed); err != nil {
					return 0, "", err
				}
				return candidates[0].ID, record.OutcomeMatchedByFallback, nil
			}
		}
	}

	id, err := session.Insert(ctx, req.Entity, keyed)
	if err == nil {
		return id, record.OutcomeInserted, nil
	}
	if !errors.Is(err, record.ErrDuplicateKey) || req.Key.Empty() {
		return 0, "", fmt.Errorf("insert %s: %w", req.Entity, err)
	}

	// Another writer inserted the same key after our lookup.
	candidates, findErr := session.Find(ctx, req.Entity, record.Criteria{Equal: req.Key})
	if findErr != nil || len(candidates) == 0 {
		return 0, "", fmt.Errorf("insert %s: %w", req.Entity, err)
	}
	if err := w.update(ctx, session, req.Entity, candidates[0].ID, fields); err != nil {
		return 0, "", err
	}
	return candidates[0].ID, record.OutcomeUpdatedByID, nil
}

// Supports reports whether entity has column at the destination.
func (w *IdempotentWriter) Supports(ctx context.Context, session record.Session, entity record.Entity, column string) (bool, error) {
	supported, err := w.supportedColumns(ctx, session, entity)
	if err != nil {
		return false, err
	}
	return supported.Has(column), nil
}

func (w *IdempotentWriter) update(ctx context.Context, session record.Session, entity record.Entity, id int64, fields record.Fields) error {
	if len(fields) == 0 {
		return nil
	}
	if err := session.Update(ctx, entity, id, fields); err != nil {
		return fmt.Errorf("update %s id=%d: %w", entity, id, err)
	}
	return nil
}

func (w *IdempotentWriter) supportedColumns(ctx context.Context, session record.Session, entity record.Entity) (record.ColumnSet, error) {
	w.mu.Lock()
	cached, ok := w.columns[entity]
	w.mu.Unlock()
	if ok {
		return cached, nil
	}

	columns, err := session.Columns(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("describe %s columns: %w", entity, err)
	}

	w.mu.Lock()
	w.columns[entity] = columns
	w.mu.Unlock()
	return columns, nil
}

func (w *IdempotentWriter) filterFields(ctx context.Context, entity record.Entity, supported record.ColumnSet, fields record.Fields) record.Fields {
	out := make(record.Fields, len(fields))
	for col, value := range fields {
		if !supported.Has(col) {
			w.logger.DebugContext(ctx, "dropping unsupported column", "entity", string(entity), "column", col)
			continue
		}
		out[col] = value
	}
	return out
}

func requireColumns(desc record.Descriptor, supported record.ColumnSet, key record.Fields) error {
	var missing []string
	for _, col := range desc.Required {
		if !supported.Has(col) {
			missing = append(missing, col)
		}
	}
	for _, col := range key.Columns() {
		if !supported.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing columns %v", ErrSchemaMismatch, desc.Table, missing)
	}
	return nil
}

func filterCriteria(c record.Criteria, supported record.ColumnSet) record.Criteria {
	out := record.Criteria{}
	for col, v := range c.Equal {
		if supported.Has(col) {
			if out.Equal == nil {
				out.Equal = record.Fields{}
			}
			out.Equal[col] = v
		}
	}
	for col, v := range c.EqualFold {
		if supported.Has(col) {
			if out.EqualFold == nil {
				out.EqualFold = map[string]string{}
			}
			out.EqualFold[col] = v
		}
	}
	for col, v := range c.Contains {
		if supported.Has(col) {
			if out.Contains == nil {
				out.Contains = map[string]string{}
			}
			out.Contains[col] = v
		}
	}
	for _, col := range c.IsNull {
		if supported.Has(col) {
			out.IsNull = append(out.IsNull, col)
		}
	}
	return out
}

func nonNullFields(f record.Fields) record.Fields {
	out := make(record.Fields, len(f))
	for col, v := range f {
		if !record.IsNull(v) {
			out[col] = v
		}
	}
	return out
}
