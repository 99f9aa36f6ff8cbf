package repository

import (
	"fmt"
	"strings"

	"order_service/internal/domain"
)

type conditionOp string

const (
	opEquals conditionOp = "="
	opGte    conditionOp = ">="
	opLte    conditionOp = "<="
)

type condition struct {
	column string
	op     conditionOp
	value  interface{}
}

// predicateBuilder accumulates equality/range conditions over fixed column
// names and lowers them to a parameterized WHERE fragment. Values only ever
// travel through placeholders; column names come from package constants.
type predicateBuilder struct {
	conditions []condition
}

func newPredicateBuilder() *predicateBuilder {
	return &predicateBuilder{}
}

func (b *predicateBuilder) equals(column string, value interface{}) *predicateBuilder {
	b.conditions = append(b.conditions, condition{column: column, op: opEquals, value: value})
	return b
}

func (b *predicateBuilder) gte(column string, value interface{}) *predicateBuilder {
	b.conditions = append(b.conditions, condition{column: column, op: opGte, value: value})
	return b
}

func (b *predicateBuilder) lte(column string, value interface{}) *predicateBuilder {
	b.conditions = append(b.conditions, condition{column: column, op: opLte, value: value})
	return b
}

// toSQL renders the accumulated conditions as "WHERE c1 AND c2 ..." plus the
// positional args. An empty builder renders an empty string.
func (b *predicateBuilder) toSQL() (string, []interface{}) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]interface{}, 0, len(b.conditions))
	for i, cond := range b.conditions {
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", cond.column, cond.op, i+1))
		args = append(args, cond.value)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// buildOrderPredicate lowers the optional listing filter into SQL conditions.
// Absent fields impose no constraint; the not-deleted condition is always
// appended so soft-deleted orders never show up in listings.
func buildOrderPredicate(filter domain.OrderFilter) (string, []interface{}) {
	builder := newPredicateBuilder()
	if filter.Status != nil {
		builder.equals("status", *filter.Status)
	}
	if filter.MinPrice != nil {
		builder.gte("total_price", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		builder.lte("total_price", *filter.MaxPrice)
	}
	builder.equals("is_deleted", false)
	return builder.toSQL()
}
