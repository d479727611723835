package data_source

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/turbot/tailpipe-extractor/types"
	_ "modernc.org/sqlite"
)

const SqliteDataSourceIdentifier = "sqlite"

// SqliteDataSource writes records to a table of a SQLite database
// the table is created on first insert and a column is added for every new field
type SqliteDataSource struct {
	name  string
	table string
	db    *sql.DB

	// columns known to exist in the table
	columns map[string]struct{}
	mut     sync.Mutex
}

func NewSqliteDataSource(cfg *Config) (DataSource, error) {
	return OpenSqliteDataSource(cfg.Name, cfg.Path, cfg.GetTable())
}

// OpenSqliteDataSource opens or creates the database at path
func OpenSqliteDataSource(name, path, table string) (*SqliteDataSource, error) {
	db, err := OpenSqlite(path)
	if err != nil {
		return nil, err
	}
	return &SqliteDataSource{
		name:  name,
		table: table,
		db:    db,
	}, nil
}

// OpenSqlite opens or creates a SQLite DB at path, creating the parent directory if needed
func OpenSqlite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func (s *SqliteDataSource) Identifier() string {
	return SqliteDataSourceIdentifier
}

func (s *SqliteDataSource) Name() string {
	return s.name
}

func (s *SqliteDataSource) Insert(ctx context.Context, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	rows, columns := normaliseRecords(records)
	if len(columns) == 0 {
		return nil
	}
	if err := s.ensureColumns(ctx, columns); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdentifier(c)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(s.table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", s.table, err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			args[i] = sqlValue(row[c])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", s.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tx: %w", err)
	}
	slog.Debug("Inserted records", "data_source", s.name, "table", s.table, "rows", len(rows))
	return nil
}

func (s *SqliteDataSource) Close() error {
	return s.db.Close()
}

// ensureColumns creates the table if needed and adds any missing columns
func (s *SqliteDataSource) ensureColumns(ctx context.Context, columns []string) error {
	if s.columns == nil {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = quoteIdentifier(c)
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdentifier(s.table), strings.Join(quoted, ", "))
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", s.table, err)
		}
		existing, err := s.tableColumns(ctx)
		if err != nil {
			return err
		}
		s.columns = existing
	}

	for _, c := range columns {
		if _, ok := s.columns[c]; ok {
			continue
		}
		ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quoteIdentifier(s.table), quoteIdentifier(c))
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("add column %s to %s: %w", c, s.table, err)
		}
		s.columns[c] = struct{}{}
	}
	return nil
}

func (s *SqliteDataSource) tableColumns(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT name FROM pragma_table_info(%s)", quoteLiteral(s.table)))
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", s.table, err)
	}
	defer rows.Close()

	res := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", s.table, err)
		}
		res[name] = struct{}{}
	}
	return res, rows.Err()
}

// normaliseRecords converts record field names to column names
// it returns the converted rows and the sorted union of their columns
func normaliseRecords(records []types.Record) ([]map[string]any, []string) {
	seen := make(map[string]struct{})
	var columns []string
	rows := make([]map[string]any, 0, len(records))
	for _, r := range records {
		row := make(map[string]any, len(r))
		for k, v := range r {
			c := ColumnName(k)
			if c == "" {
				continue
			}
			row[c] = v
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				columns = append(columns, c)
			}
		}
		rows = append(rows, row)
	}
	sort.Strings(columns)
	return rows, columns
}

// sqlValue returns v if the driver accepts it, otherwise its JSON representation
func sqlValue(v any) any {
	if v == nil {
		return nil
	}
	if dv, err := driver.DefaultParameterConverter.ConvertValue(v); err == nil {
		return dv
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
