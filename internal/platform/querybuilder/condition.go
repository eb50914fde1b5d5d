package querybuilder

import "strings"

type Condition interface {
	appendSQL(w *sqlWriter)
}

type eqCondition struct {
	column string
	value  any
}

// Eq renders "column = $n". A nil value renders "column IS NULL" so a
// natural key holding an absent kickoff still matches itself.
func Eq(column string, value any) Condition {
	if value == nil {
		return IsNull(column)
	}
	return eqCondition{column: column, value: value}
}

func (c eqCondition) appendSQL(w *sqlWriter) {
	w.WriteString(c.column)
	w.WriteString(" = ")
	w.bind(c.value)
}

type eqFoldCondition struct {
	column string
	value  string
}

// EqFold is a case-insensitive equality on a text column.
func EqFold(column, value string) Condition {
	return eqFoldCondition{column: column, value: value}
}

func (c eqFoldCondition) appendSQL(w *sqlWriter) {
	w.WriteString("LOWER(")
	w.WriteString(c.column)
	w.WriteString(") = LOWER(")
	w.bind(c.value)
	w.WriteString(")")
}

type containsCondition struct {
	column string
	value  string
}

// Contains is a case-insensitive substring match. LIKE wildcards in value
// are escaped.
func Contains(column, value string) Condition {
	return containsCondition{column: column, value: value}
}

func (c containsCondition) appendSQL(w *sqlWriter) {
	w.WriteString(c.column)
	w.WriteString(" ILIKE ")
	w.bind("%" + escapeLike(c.value) + "%")
	w.WriteString(` ESCAPE '\'`)
}

type inCondition struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

// An empty set matches nothing.
func (c inCondition) appendSQL(w *sqlWriter) {
	if len(c.values) == 0 {
		w.WriteString("1=0")
		return
	}

	w.WriteString(c.column)
	w.WriteString(" IN (")
	for i, v := range c.values {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(v)
	}
	w.WriteString(")")
}

type isNullCondition struct {
	column string
	negate bool
}

func IsNull(column string) Condition {
	return isNullCondition{column: column}
}

func IsNotNull(column string) Condition {
	return isNullCondition{column: column, negate: true}
}

func (c isNullCondition) appendSQL(w *sqlWriter) {
	w.WriteString(c.column)
	if c.negate {
		w.WriteString(" IS NOT NULL")
		return
	}
	w.WriteString(" IS NULL")
}

type exprCondition struct {
	expr string
	args []any
}

// Expr embeds raw SQL; every '?' is bound to the next argument.
func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) appendSQL(w *sqlWriter) {
	w.expr(c.expr, c.args)
}

type groupCondition struct {
	op    string
	parts []Condition
}

func And(parts ...Condition) Condition {
	return groupCondition{op: " AND ", parts: parts}
}

func Or(parts ...Condition) Condition {
	return groupCondition{op: " OR ", parts: parts}
}

func (c groupCondition) appendSQL(w *sqlWriter) {
	if len(c.parts) == 0 {
		w.WriteString("1=1")
		return
	}
	w.WriteString("(")
	for i, part := range c.parts {
		if i > 0 {
			w.WriteString(c.op)
		}
		part.appendSQL(w)
	}
	w.WriteString(")")
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
