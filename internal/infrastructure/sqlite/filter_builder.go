package sqlite

import (
	"fmt"
	"strings"

	"github.com/martijn/evently/internal/api/util"
	"github.com/martijn/evently/internal/core/domain"
)

// datetimeFields defines fields that contain datetime values and need normalization
var datetimeFields = map[string]bool{
	"date":       true,
	"created_at": true,
	"updated_at": true,
}

// normalizeDateTime converts user input like "2024-01-10" or
// "2024-01-10T09:00+02:00" into the stored column format so that string
// comparison in SQLite matches instant comparison. Unparseable input is
// returned unchanged.
func normalizeDateTime(field, value string) string {
	if !datetimeFields[field] {
		return value
	}
	t, err := domain.ParseDate(value)
	if err != nil {
		return value
	}
	return formatTime(t)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a lowercased LIKE pattern matching s literally
// anywhere in the value. Use it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// BuildFilterClause builds a SQL WHERE clause from a QueryFilter. columns maps
// public field names to qualified column names; unknown fields yield no clause.
func BuildFilterClause(f util.QueryFilter, columns map[string]string) (string, []interface{}) {
	column, ok := columns[f.Field]
	if !ok {
		return "", nil
	}

	value := f.Value
	if s, ok := value.(string); ok {
		value = normalizeDateTime(f.Field, s)
	}

	switch f.Operator {
	case util.OpEq:
		return fmt.Sprintf("%s = ?", column), []interface{}{value}
	case util.OpNe:
		return fmt.Sprintf("%s != ?", column), []interface{}{value}
	case util.OpGt:
		return fmt.Sprintf("%s > ?", column), []interface{}{value}
	case util.OpGte:
		return fmt.Sprintf("%s >= ?", column), []interface{}{value}
	case util.OpLt:
		return fmt.Sprintf("%s < ?", column), []interface{}{value}
	case util.OpLte:
		return fmt.Sprintf("%s <= ?", column), []interface{}{value}
	case util.OpLike:
		s, _ := f.Value.(string)
		return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column), []interface{}{containsPattern(s)}
	case util.OpIsNull:
		return fmt.Sprintf("%s IS NULL", column), nil
	case util.OpIsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", column), nil
	case util.OpIn, util.OpNin:
		values, ok := f.Value.([]string)
		if !ok || len(values) == 0 {
			return "", nil
		}
		placeholders := make([]string, len(values))
		args := make([]interface{}, len(values))
		for i, v := range values {
			placeholders[i] = "?"
			args[i] = normalizeDateTime(f.Field, v)
		}
		keyword := "IN"
		if f.Operator == util.OpNin {
			keyword = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", column, keyword, strings.Join(placeholders, ", ")), args
	default:
		return "", nil
	}
}

// ApplyFilters applies QueryFilters to a query and returns the modified query and args
func ApplyFilters(query string, args []interface{}, filters []util.QueryFilter, columns map[string]string) (string, []interface{}) {
	for _, f := range filters {
		clause, filterArgs := BuildFilterClause(f, columns)
		if clause != "" {
			query += " AND " + clause
			args = append(args, filterArgs...)
		}
	}
	return query, args
}

// ApplyPagination applies page/perPage to a query
func ApplyPagination(query string, args []interface{}, page, perPage int) (string, []interface{}) {
	if perPage > 0 {
		query += " LIMIT ?"
		args = append(args, perPage)

		if page > 1 {
			query += " OFFSET ?"
			args = append(args, util.ListFilter{Page: page, PerPage: perPage}.Offset())
		}
	}
	return query, args
}
