package memory

import (
	"reflect"
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

func normalizeFields(fields record.Fields) record.Fields {
	out := make(record.Fields, len(fields))
	for col, v := range fields {
		out[col] = normalizeValue(v)
	}
	return out
}

// normalizeValue stores values the way a postgres round trip returns them:
// integers as int64, floats as float64, times in UTC, pointers dereferenced.
func normalizeValue(v any) any {
	if record.IsNull(v) {
		return nil
	}
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	case string, bool:
		return x
	case time.Time:
		return x.UTC()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return normalizeValue(rv.Elem().Interface())
	}
	return v
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func int64Value(v any) int64 {
	n, _ := v.(int64)
	return n
}

func intValue(v any) int {
	return int(int64Value(v))
}

func optionalInt(v any) *int {
	n, ok := v.(int64)
	if !ok {
		return nil
	}
	out := int(n)
	return &out
}

func optionalInt64(v any) *int64 {
	n, ok := v.(int64)
	if !ok {
		return nil
	}
	return &n
}

func optionalFloat(v any) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func optionalTime(v any) *time.Time {
	t, ok := v.(time.Time)
	if !ok {
		return nil
	}
	return &t
}
