package tools

import (
	"context"
	"strings"
	"testing"
)

// Guard-rail checks run before any connection is used, so a nil pool is fine
// for every query that must be rejected.
func TestSQLQueryRejectsNonSelect(t *testing.T) {
	tool := NewSQLTool(nil)

	cases := []string{
		"DELETE FROM core_banking.customers",
		"UPDATE core_banking.accounts SET status = 'closed'",
		"DROP TABLE core_banking.customers",
		"TRUNCATE core_banking.transactions",
		"INSERT INTO gl.gl_entries VALUES (1)",
		"EXPLAIN SELECT 1",
		"",
	}
	for _, q := range cases {
		res := tool.Query(context.Background(), q)
		if res.Error == "" {
			t.Errorf("query %q should have been rejected", q)
		}
		if res.RowCount != 0 || len(res.Rows) != 0 {
			t.Errorf("rejected query %q returned data", q)
		}
	}
}

func TestSQLQueryRejectsEmbeddedKeywords(t *testing.T) {
	tool := NewSQLTool(nil)

	res := tool.Query(context.Background(), "SELECT 1; DROP TABLE core_banking.customers")
	if res.Error == "" || !strings.Contains(res.Error, "DROP") {
		t.Errorf("expected DROP rejection, got %q", res.Error)
	}

	res = tool.Query(context.Background(), "WITH x AS (SELECT 1) DELETE FROM core_banking.accounts")
	if res.Error == "" || !strings.Contains(res.Error, "DELETE") {
		t.Errorf("expected DELETE rejection, got %q", res.Error)
	}
}

func TestSQLQueryAllowsKeywordSubstrings(t *testing.T) {
	tool := NewSQLTool(nil)

	// created_at contains CREATE but not as a whole word; the query must pass
	// the keyword scan. With a nil pool a permitted query panics at the
	// connection step instead of returning a guard-rail rejection.
	rejectedByGuard := func(q string) (rejected bool) {
		defer func() { recover() }()
		res := tool.Query(context.Background(), q)
		return res.Error != ""
	}
	if rejectedByGuard("SELECT created_at FROM core_banking.customers") {
		t.Error("whole-word matching should permit created_at")
	}
	if rejectedByGuard("SELECT update_cycle FROM information_schema.tables") {
		t.Error("whole-word matching should permit update_cycle")
	}
}

func TestPortableValue(t *testing.T) {
	if v := portableValue([]byte("hello")); v != "hello" {
		t.Errorf("[]byte should become string, got %v", v)
	}
	if v := portableValue(int64(42)); v != int64(42) {
		t.Errorf("int64 should pass through, got %v", v)
	}
	if v := portableValue(nil); v != nil {
		t.Errorf("nil should pass through, got %v", v)
	}
	if v := portableValue(map[string]int{"a": 1}); v != "map[a:1]" {
		t.Errorf("non-primitive should be stringified, got %v", v)
	}
}
