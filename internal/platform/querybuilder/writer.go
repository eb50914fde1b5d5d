package querybuilder

import (
	"strconv"
	"strings"
)

// sqlWriter accumulates statement text and its positional arguments.
// Postgres placeholders are numbered in the order values are bound.
type sqlWriter struct {
	strings.Builder
	args []any
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.WriteString("$")
	w.WriteString(strconv.Itoa(len(w.args)))
}

// expr copies raw SQL, binding each '?' to the next value. Extra '?' are
// left as written.
func (w *sqlWriter) expr(sql string, values []any) {
	next := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' && next < len(values) {
			w.bind(values[next])
			next++
			continue
		}
		w.WriteByte(sql[i])
	}
}

func (w *sqlWriter) list(keyword string, items []string) {
	if len(items) == 0 {
		return
	}
	w.WriteString(keyword)
	w.WriteString(strings.Join(items, ", "))
}

func (w *sqlWriter) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			w.WriteString(" WHERE ")
		} else {
			w.WriteString(" AND ")
		}
		c.appendSQL(w)
	}
}
