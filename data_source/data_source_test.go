package data_source

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/tailpipe-extractor/context_values"
	"github.com/turbot/tailpipe-extractor/types"
)

func TestColumnName(t *testing.T) {
	tests := map[string]string{
		"userName":        "user_name",
		"User Name":       "user_name",
		" status ":        "status",
		"tp_execution_id": "tp_execution_id",
		"HTTPStatus":      "http_status",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ColumnName(in))
		})
	}
}

func TestSqliteDataSource_Insert(t *testing.T) {
	ctx := context.Background()
	ds, err := OpenSqliteDataSource("events", filepath.Join(t.TempDir(), "db", "events.db"), "events")
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Insert(ctx, []types.Record{
		{"userName": "alice", "count": 1},
		{"userName": "bob", "count": 2},
	}))
	// a second batch with a new field adds a column
	require.NoError(t, ds.Insert(ctx, []types.Record{
		{"userName": "carol", "extra": map[string]any{"k": "v"}},
	}))

	var count int
	require.NoError(t, ds.db.QueryRow(`SELECT COUNT(*) FROM "events"`).Scan(&count))
	assert.Equal(t, 3, count)

	var extra string
	require.NoError(t, ds.db.QueryRow(`SELECT extra FROM "events" WHERE user_name = 'carol'`).Scan(&extra))
	assert.JSONEq(t, `{"k":"v"}`, extra)

	columns, err := ds.tableColumns(ctx)
	require.NoError(t, err)
	assert.Contains(t, columns, "user_name")
	assert.Contains(t, columns, "count")
	assert.Contains(t, columns, "extra")
}

func TestSqliteDataSource_ReopenExistingTable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")

	ds, err := OpenSqliteDataSource("events", path, "events")
	require.NoError(t, err)
	require.NoError(t, ds.Insert(ctx, []types.Record{{"a": "1"}}))
	require.NoError(t, ds.Close())

	ds, err = OpenSqliteDataSource("events", path, "events")
	require.NoError(t, err)
	defer ds.Close()
	require.NoError(t, ds.Insert(ctx, []types.Record{{"a": "2", "b": "3"}}))

	var count int
	require.NoError(t, ds.db.QueryRow(`SELECT COUNT(*) FROM "events"`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestJsonlDataSource_Insert(t *testing.T) {
	dir := t.TempDir()
	ds, err := OpenJsonlDataSource("out", dir)
	require.NoError(t, err)

	ctx := context_values.WithExecutionId(context.Background(), "exec1")
	require.NoError(t, ds.Insert(ctx, []types.Record{{"a": "1"}, {"a": "2"}}))
	require.NoError(t, ds.Insert(ctx, []types.Record{{"a": "3"}}))

	tests := []struct {
		file     string
		wantRows int
	}{
		{file: "exec1-0.jsonl", wantRows: 2},
		{file: "exec1-1.jsonl", wantRows: 1},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			f, err := os.Open(filepath.Join(dir, tt.file))
			require.NoError(t, err)
			defer f.Close()

			rows := 0
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				var r map[string]any
				require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
				rows++
			}
			assert.Equal(t, tt.wantRows, rows)

			id, err := FileNameToExecutionId(tt.file)
			require.NoError(t, err)
			assert.Equal(t, "exec1", id)
		})
	}
}

func TestJsonlDataSource_RequiresExecutionId(t *testing.T) {
	ds, err := OpenJsonlDataSource("out", t.TempDir())
	require.NoError(t, err)
	assert.Error(t, ds.Insert(context.Background(), []types.Record{{"a": "1"}}))
}

func TestConfigRegistry_Resolve(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRegistry(
		&Config{Name: "events", Type: "sqlite", Path: filepath.Join(dir, "events.db")},
		&Config{Name: "raw", Type: "JSONL", Path: filepath.Join(dir, "raw")},
	)
	require.NoError(t, err)
	defer r.Close()

	tests := []struct {
		name     string
		wantOk   bool
		wantType string
	}{
		{name: "events", wantOk: true, wantType: SqliteDataSourceIdentifier},
		{name: "raw", wantOk: true, wantType: JsonlDataSourceIdentifier},
		{name: "missing", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, ok := r.Resolve(tt.name)
			assert.Equal(t, tt.wantOk, ok)
			if !tt.wantOk {
				return
			}
			assert.Equal(t, tt.wantType, ds.Identifier())
			assert.Equal(t, tt.name, ds.Name())

			// resolved instances are cached
			again, _ := r.Resolve(tt.name)
			assert.Same(t, ds, again)
		})
	}
	assert.Equal(t, []string{"events", "raw"}, r.Names())
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		configs []*Config
	}{
		{name: "unknown type", configs: []*Config{{Name: "a", Type: "parquet", Path: "x"}}},
		{name: "missing path", configs: []*Config{{Name: "a", Type: "sqlite"}}},
		{name: "duplicate", configs: []*Config{{Name: "a", Type: "jsonl", Path: "x"}, {Name: "a", Type: "jsonl", Path: "y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.configs...)
			assert.Error(t, err)
		})
	}
}
