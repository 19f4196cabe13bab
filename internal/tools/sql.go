// Package tools implements the three read-only query surfaces exposed to an
// analytical agent: ad-hoc SQL, metadata catalog search and ontology queries.
// Every tool returns failures inside its result payload rather than as a Go
// error, so a malformed query never takes the caller down.
package tools

import (
	"context"
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// maxSQLRows caps any single result set.
const maxSQLRows = 500

var forbiddenKeywords = []string{"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "TRUNCATE", "CREATE"}

var forbiddenPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(forbiddenKeywords))
	for i, kw := range forbiddenKeywords {
		out[i] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return out
}()

// SQLResult is the payload returned to the agent for a SQL query. Exactly one
// of Error or the data fields is populated.
type SQLResult struct {
	Columns   []string         `json:"columns,omitempty"`
	Rows      []map[string]any `json:"rows,omitempty"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated"`
	Error     string           `json:"error,omitempty"`
}

// SQLTool runs read-only queries against the generated dataset.
type SQLTool struct {
	pool *pgxpool.Pool
}

func NewSQLTool(pool *pgxpool.Pool) *SQLTool {
	return &SQLTool{pool: pool}
}

// Query executes one SELECT or WITH statement. Statements containing any
// mutating keyword as a whole word are rejected before touching the database.
func (t *SQLTool) Query(ctx context.Context, query string) SQLResult {
	upper := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return SQLResult{Error: "only SELECT queries are permitted"}
	}
	for i, pat := range forbiddenPatterns {
		if pat.MatchString(upper) {
			return SQLResult{Error: fmt.Sprintf("query contains forbidden keyword: %s", forbiddenKeywords[i])}
		}
	}

	rows, err := t.pool.Query(ctx, query)
	if err != nil {
		return SQLResult{Error: err.Error()}
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var out []map[string]any
	for rows.Next() {
		if len(out) >= maxSQLRows {
			break
		}
		vals, err := rows.Values()
		if err != nil {
			return SQLResult{Error: err.Error()}
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = portableValue(vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return SQLResult{Error: err.Error()}
	}

	return SQLResult{
		Columns:   columns,
		Rows:      out,
		RowCount:  len(out),
		Truncated: len(out) >= maxSQLRows,
	}
}

// portableValue maps driver values onto JSON-safe scalars. Temporal and
// binary values become strings; anything else non-primitive is stringified.
func portableValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, int16, int32, int64, float32, float64:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = portableValue(e)
		}
		return out
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return portableValue(dv)
	default:
		return fmt.Sprint(val)
	}
}
