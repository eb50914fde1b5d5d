package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

const (
	pqUniqueViolation = "23505"
	pqUndefinedColumn = "42703"
	pqUndefinedTable  = "42P01"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// classifyError maps driver errors onto the record package sentinels so the
// writer can tell a lost insert race from a real failure.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pqUniqueViolation:
		return fmt.Errorf("%w: %s (%s)", record.ErrDuplicateKey, pqErr.Constraint, pqErr.Message)
	case pqUndefinedColumn:
		return fmt.Errorf("%w: %s", record.ErrUndefinedColumn, pqErr.Message)
	case pqUndefinedTable:
		return fmt.Errorf("%w: %s", record.ErrUnknownEntity, pqErr.Message)
	}
	return err
}

// sqlValue unwraps optional pointers so the driver only sees plain values.
func sqlValue(v any) any {
	if record.IsNull(v) {
		return nil
	}
	switch typed := v.(type) {
	case int:
		return int64(typed)
	case time.Time:
		return typed.UTC()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return sqlValue(rv.Elem().Interface())
	}
	return v
}

func nullStringToString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	out := v.Time.UTC()
	return &out
}

func int64SliceToAny(items []int64) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
