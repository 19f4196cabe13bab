package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianhq/meridian/internal/config"
)

// pgParamLimit is the Postgres wire-protocol cap on bind parameters per
// statement; multi-row inserts are sized to stay under it.
const pgParamLimit = 65535

// Store wraps the shared connection pool used by every generation stage and
// by the query tools.
type Store struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

func New() *Store {
	return &Store{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s *Store) Connect(ctx context.Context, url string) error {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	cfg.MaxConns = 4
	cfg.MinConns = 0
	cfg.MaxConnLifetime = 15 * time.Minute
	cfg.MaxConnIdleTime = 3 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	s.pool = pool
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Pool exposes the underlying pool for read-only consumers (query tools).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// BulkInsert writes all records to table in one transaction, chunked at
// config.BatchSize rows per queued statement. Column order is explicit so
// every statement binds values identically. Nothing is committed unless every
// chunk succeeds; callers must not assume partial persistence on error.
func (s *Store) BulkInsert(ctx context.Context, table string, columns []string, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}

	// One multi-row INSERT cannot exceed the bind-parameter cap.
	rowsPerStmt := config.BatchSize
	if max := pgParamLimit / len(columns); rowsPerStmt > max {
		rowsPerStmt = max
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", table, err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for start := 0; start < len(records); start += rowsPerStmt {
		end := start + rowsPerStmt
		if end > len(records) {
			end = len(records)
		}

		ins := s.qb.Insert(table).Columns(columns...)
		for _, rec := range records[start:end] {
			vals := make([]any, len(columns))
			for i, col := range columns {
				vals[i] = rec[col]
			}
			ins = ins.Values(vals...)
		}

		sql, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert for %s: %w", table, err)
		}
		batch.Queue(sql, args...)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("bulk insert into %s failed: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit bulk insert into %s: %w", table, err)
	}
	return nil
}

// SelectInt64s runs a single-column query and scans int64 keys, the read-back
// used to register assigned primary keys after a bulk insert.
func (s *Store) SelectInt64s(ctx context.Context, sql string, args ...any) ([]int64, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SelectGroupedIDs runs a two-column (group, id) query and buckets the ids by
// group, used to rehydrate the id registry when a run resumes mid-pipeline.
func (s *Store) SelectGroupedIDs(ctx context.Context, sql string, args ...any) (map[string][]int64, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]int64)
	for rows.Next() {
		var group string
		var id int64
		if err := rows.Scan(&group, &id); err != nil {
			return nil, fmt.Errorf("failed to scan grouped id: %w", err)
		}
		out[group] = append(out[group], id)
	}
	return out, rows.Err()
}

// SelectRows runs a query and returns every row as a positional value slice,
// for stages that read back more than keys (contact details, segment codes).
func (s *Store) SelectRows(ctx context.Context, sql string, args ...any) ([][]any, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

// Exec runs a statement outside any bulk-insert transaction (DDL, the
// warehouse INSERT..SELECT derivations, constraint toggles).
func (s *Store) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := s.pool.Exec(ctx, sql, args...)
	return err
}

// TableCount returns the row count for one schema-qualified table.
func (s *Store) TableCount(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	return n, err
}

// DropConstraint removes a foreign-key constraint so intentionally dangling
// references can be inserted.
func (s *Store) DropConstraint(ctx context.Context, table, constraint string) error {
	return s.Exec(ctx, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", table, constraint))
}

// AddConstraintNotValid re-declares a foreign key without validating existing
// rows, so the injected orphans survive while future writes are checked.
func (s *Store) AddConstraintNotValid(ctx context.Context, table, constraint, column, refTable, refColumn string) error {
	return s.Exec(ctx, fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s) NOT VALID",
		table, constraint, column, refTable, refColumn))
}

// Schemas lists every schema owned by the generator, in drop order.
var Schemas = []string{
	"warehouse_reporting", "warehouse_core", "warehouse_staging",
	"payments", "treasury", "gl", "risk", "crm", "core_banking",
}

// ApplySchema drops all generator-owned schemas and replays the DDL files
// from schemaDir in filename order.
func (s *Store) ApplySchema(ctx context.Context, schemaDir string) error {
	for _, schema := range Schemas {
		if err := s.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
			return fmt.Errorf("failed to drop schema %s: %w", schema, err)
		}
	}

	entries, err := os.ReadDir(schemaDir)
	if err != nil {
		return fmt.Errorf("failed to read schema directory %s: %w", schemaDir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, filepath.Join(schemaDir, entry.Name()))
		}
	}
	sort.Strings(files)

	for _, file := range files {
		ddl, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		// pgx sends one statement per Exec, so the file is split on
		// statement boundaries. DDL here carries no procedural bodies.
		for _, stmt := range strings.Split(string(ddl), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if err := s.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute %s: %w", file, err)
			}
		}
	}
	return nil
}
