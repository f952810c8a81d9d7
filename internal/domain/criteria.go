package domain

// Operator is a comparison used in a Condition.
type Operator string

// Supported comparison operators.
const (
	OpEq   Operator = "="
	OpNe   Operator = "<>"
	OpLt   Operator = "<"
	OpLte  Operator = "<="
	OpGt   Operator = ">"
	OpGte  Operator = ">="
	OpLike Operator = "LIKE"
	// OpIn matches any element of a []int64 or []string value.
	OpIn Operator = "IN"
)

// Condition compares one entity column against a value.
type Condition struct {
	Column string
	Op     Operator
	Value  any
}

// Criteria is a conjunction of conditions. A nil or empty Criteria matches every row.
type Criteria []Condition

// Where starts a Criteria with a single condition.
func Where(column string, op Operator, value any) Criteria {
	return Criteria{{Column: column, Op: op, Value: value}}
}

// And returns a copy of c extended with another condition.
func (c Criteria) And(column string, op Operator, value any) Criteria {
	out := make(Criteria, 0, len(c)+1)
	out = append(out, c...)
	return append(out, Condition{Column: column, Op: op, Value: value})
}

// IDEquals matches the row with the given identifier.
func IDEquals(id int64) Criteria {
	return Where("id", OpEq, id)
}
