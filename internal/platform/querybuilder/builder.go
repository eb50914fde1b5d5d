package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errNoTable   = errors.New("querybuilder: table is required")
	errNoColumns = errors.New("querybuilder: columns are required")
	errNoWhere   = errors.New("querybuilder: delete requires a where clause")
)

type SelectBuilder struct {
	columns []string
	table   string
	joins   []string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// Join appends a raw join clause, e.g. "LEFT JOIN venues v ON v.id = m.venue_id".
func (b *SelectBuilder) Join(clause string) *SelectBuilder {
	b.joins = append(b.joins, strings.TrimSpace(clause))
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errNoColumns
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}

	var w sqlWriter
	w.list("SELECT ", b.columns)
	w.WriteString(" FROM ")
	w.WriteString(b.table)
	for _, join := range b.joins {
		w.WriteString(" ")
		w.WriteString(join)
	}
	w.where(b.where)
	w.list(" ORDER BY ", b.orderBy)
	if b.limit > 0 {
		w.WriteString(" LIMIT ")
		w.WriteString(strconv.Itoa(b.limit))
	}
	return w.String(), w.args, nil
}

// InsertBuilder writes a single-row INSERT, which is all the record writer
// needs since each row goes through its own savepoint.
type InsertBuilder struct {
	table     string
	columns   []string
	values    []any
	returning []string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}
	if len(b.columns) == 0 {
		return "", nil, errNoColumns
	}
	if len(b.values) != len(b.columns) {
		return "", nil, fmt.Errorf("querybuilder: insert into %s has %d values for %d columns", b.table, len(b.values), len(b.columns))
	}

	var w sqlWriter
	w.WriteString("INSERT INTO ")
	w.WriteString(b.table)
	w.WriteString(" (")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(") VALUES (")
	for i, v := range b.values {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(v)
	}
	w.WriteString(")")
	w.list(" RETURNING ", b.returning)
	return w.String(), w.args, nil
}

type assignment struct {
	column string
	value  any
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}
	if len(b.sets) == 0 {
		return "", nil, errNoColumns
	}

	var w sqlWriter
	w.WriteString("UPDATE ")
	w.WriteString(b.table)
	w.WriteString(" SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(s.column)
		w.WriteString(" = ")
		w.bind(s.value)
	}
	w.where(b.where)
	return w.String(), w.args, nil
}

// DeleteBuilder refuses to render without conditions; clearing a whole
// table is never an ingestion operation.
type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}
	if len(b.where) == 0 {
		return "", nil, errNoWhere
	}

	var w sqlWriter
	w.WriteString("DELETE FROM ")
	w.WriteString(b.table)
	w.where(b.where)
	return w.String(), w.args, nil
}
