package runtime

import (
	"strconv"
	"strings"
)

// Operator is a SQL comparison operator usable in a Predicate.
type Operator string

const (
	OpEqual    Operator = "="
	OpNotEqual Operator = "<>"
)

// SortDirection orders result rows.
type SortDirection string

const (
	SortAsc SortDirection = "ASC"
)

// Predicate is a single column comparison; predicates are joined with AND.
type Predicate struct {
	Column   string
	Operator Operator
	Value    any
}

// Order sorts by a single column.
type Order struct {
	Column    string
	Direction SortDirection
}

// SelectSpec describes a SELECT against a single table.
type SelectSpec struct {
	Table      string
	Columns    []string
	Predicates []Predicate
	Orders     []Order
	Limit      int
}

// BuildSelectSQL renders spec into a parameterised statement and its arguments.
func BuildSelectSQL(spec SelectSpec) (string, []any) {
	columns := spec.Columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(spec.Table)

	args := make([]any, 0, len(spec.Predicates)+1)
	for i, pred := range spec.Predicates {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, pred.Value)
		sb.WriteString(pred.Column)
		sb.WriteByte(' ')
		sb.WriteString(string(pred.Operator))
		sb.WriteString(" $")
		sb.WriteString(strconv.Itoa(len(args)))
	}

	for i, order := range spec.Orders {
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(order.Column)
		if order.Direction != "" {
			sb.WriteByte(' ')
			sb.WriteString(string(order.Direction))
		}
	}

	if spec.Limit > 0 {
		args = append(args, spec.Limit)
		sb.WriteString(" LIMIT $")
		sb.WriteString(strconv.Itoa(len(args)))
	}

	return sb.String(), args
}
