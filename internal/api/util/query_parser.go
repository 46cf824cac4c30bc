package util

import (
	"fmt"
	"strings"
)

// QueryOperator represents a filter operator
type QueryOperator string

const (
	OpEq        QueryOperator = "eq"
	OpNe        QueryOperator = "ne"
	OpGt        QueryOperator = "gt"
	OpGte       QueryOperator = "gte"
	OpLt        QueryOperator = "lt"
	OpLte       QueryOperator = "lte"
	OpIn        QueryOperator = "in"
	OpNin       QueryOperator = "nin"
	OpLike      QueryOperator = "like"
	OpIsNull    QueryOperator = "isnull"
	OpIsNotNull QueryOperator = "isnotnull"
)

// QueryFilter represents a single filter condition
type QueryFilter struct {
	Field    string
	Operator QueryOperator
	Value    interface{} // string, or []string for in/nin
}

var validOperators = map[string]QueryOperator{
	"eq":        OpEq,
	"ne":        OpNe,
	"gt":        OpGt,
	"gte":       OpGte,
	"lt":        OpLt,
	"lte":       OpLte,
	"in":        OpIn,
	"nin":       OpNin,
	"like":      OpLike,
	"isnull":    OpIsNull,
	"isnotnull": OpIsNotNull,
}

// ParseQueryString parses a query string into filter conditions.
// Supports formats:
//   - field|value (defaults to eq operator)
//   - field|isnull or field|isnotnull (null checks)
//   - field|operator|value (explicit operator)
//
// Multiple conditions are comma-separated. Values for in/nin are
// semicolon-separated, e.g. location|in|Room A;Room B
func ParseQueryString(queryStr string) ([]QueryFilter, error) {
	if strings.TrimSpace(queryStr) == "" {
		return nil, nil
	}

	var filters []QueryFilter
	for _, pair := range strings.Split(queryStr, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		filter, err := parseCondition(pair)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}

	return filters, nil
}

func parseCondition(pair string) (QueryFilter, error) {
	parts := strings.Split(pair, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" {
		return QueryFilter{}, fmt.Errorf("invalid query format: %s (missing field)", pair)
	}

	switch len(parts) {
	case 2:
		op := QueryOperator(strings.ToLower(parts[1]))
		if op == OpIsNull || op == OpIsNotNull {
			return QueryFilter{Field: parts[0], Operator: op}, nil
		}
		return QueryFilter{Field: parts[0], Operator: OpEq, Value: parts[1]}, nil

	case 3:
		op, ok := validOperators[strings.ToLower(parts[1])]
		if !ok {
			return QueryFilter{}, fmt.Errorf("invalid operator: %s", parts[1])
		}

		var value interface{} = parts[2]
		if op == OpIn || op == OpNin {
			values := strings.Split(parts[2], ";")
			for i := range values {
				values[i] = strings.TrimSpace(values[i])
			}
			value = values
		}
		return QueryFilter{Field: parts[0], Operator: op, Value: value}, nil

	default:
		return QueryFilter{}, fmt.Errorf("invalid query format: %s (expected field|value or field|operator|value)", pair)
	}
}

// ValidateFilterFields validates that all filter fields are in the allowed set
func ValidateFilterFields(filters []QueryFilter, allowedFields []string) error {
	allowed := make(map[string]bool, len(allowedFields))
	for _, f := range allowedFields {
		allowed[f] = true
	}

	for _, filter := range filters {
		if !allowed[filter.Field] {
			return fmt.Errorf("invalid query field: %s (valid fields: %s)", filter.Field, strings.Join(allowedFields, ", "))
		}
	}

	return nil
}
