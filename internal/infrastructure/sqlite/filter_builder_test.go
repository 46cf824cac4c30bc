package sqlite

import (
	"math"
	"testing"

	"github.com/martijn/evently/internal/api/util"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Room", "%room%"},
		{"50%", `%50\%%`},
		{"room_1", `%room\_1%`},
		{`c:\share`, `%c:\\share%`},
	}

	for _, tt := range tests {
		if got := containsPattern(tt.input); got != tt.expected {
			t.Errorf("containsPattern(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildFilterClauseLike(t *testing.T) {
	columns := map[string]string{"location": "e.location"}

	clause, args := BuildFilterClause(util.QueryFilter{Field: "location", Operator: util.OpLike, Value: "A_B"}, columns)
	if clause != `LOWER(e.location) LIKE ? ESCAPE '\'` {
		t.Errorf("unexpected clause %q", clause)
	}
	if len(args) != 1 || args[0] != `%a\_b%` {
		t.Errorf("unexpected args %v", args)
	}
}

func TestApplyPaginationLargePage(t *testing.T) {
	query, args := ApplyPagination("SELECT 1", nil, math.MaxInt, 10)
	if query != "SELECT 1 LIMIT ? OFFSET ?" {
		t.Fatalf("unexpected query %q", query)
	}
	offset, ok := args[1].(int)
	if !ok || offset < 0 {
		t.Errorf("offset = %v, want a non-negative int", args[1])
	}
}
