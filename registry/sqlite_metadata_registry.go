package registry

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/turbot/tailpipe-extractor/constants"
	"github.com/turbot/tailpipe-extractor/data_source"
	"github.com/turbot/tailpipe-extractor/types"
)

const (
	FieldId      = "id"
	FieldName    = "name"
	FieldUpdated = "updated"
)

const metadataSchema = `
create table if not exists data_source (
	id integer not null primary key,
	name text not null unique,
	updated text
);
`

var metadataColumns = map[string]struct{}{
	FieldId:      {},
	FieldName:    {},
	FieldUpdated: {},
}

// SqliteMetadataRegistry keeps one row per data source recording when it was last updated
type SqliteMetadataRegistry struct {
	db *sql.DB
}

func NewSqliteMetadataRegistry(path string) (*SqliteMetadataRegistry, error) {
	db, err := data_source.OpenSqlite(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(metadataSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create data_source table: %w", err)
	}
	return &SqliteMetadataRegistry{db: db}, nil
}

func (r *SqliteMetadataRegistry) Identifier() string {
	return constants.MetadataRegistryName
}

// Register adds a row for the data source if there is not one already
func (r *SqliteMetadataRegistry) Register(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, "insert into data_source(name) values(?) on conflict(name) do nothing", name)
	if err != nil {
		return fmt.Errorf("register data source %s: %w", name, err)
	}
	return nil
}

func (r *SqliteMetadataRegistry) Fetch(ctx context.Context, query map[string]any) ([]types.Record, error) {
	var where []string
	var args []any

	// sort for a deterministic statement
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := metadataColumns[k]; !ok {
			return nil, fmt.Errorf("unsupported query field '%s'", k)
		}
		where = append(where, k+" = ?")
		args = append(args, query[k])
	}

	stmt := "select id, name, updated from data_source"
	if len(where) > 0 {
		stmt += " where " + strings.Join(where, " and ")
	}
	stmt += " order by id"

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query data_source: %w", err)
	}
	defer rows.Close()

	var res []types.Record
	for rows.Next() {
		var id int64
		var name string
		var updated sql.NullString
		if err := rows.Scan(&id, &name, &updated); err != nil {
			return nil, fmt.Errorf("read data_source: %w", err)
		}
		rec := types.Record{FieldId: id, FieldName: name, FieldUpdated: nil}
		if updated.Valid {
			rec[FieldUpdated] = updated.String
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func (r *SqliteMetadataRegistry) UpdateObj(ctx context.Context, record types.Record) error {
	name := record.String(FieldName)
	updated := record[FieldUpdated]

	var res sql.Result
	var err error
	if id, ok := record[FieldId]; ok && id != nil {
		res, err = r.db.ExecContext(ctx, "update data_source set name = coalesce(nullif(?, ''), name), updated = ? where id = ?", name, updated, id)
	} else if name != "" {
		res, err = r.db.ExecContext(ctx,
			"insert into data_source(name, updated) values(?, ?) on conflict(name) do update set updated = excluded.updated",
			name, updated)
	} else {
		return fmt.Errorf("data_source record must have an id or a name")
	}
	if err != nil {
		return fmt.Errorf("update data_source: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update data_source: no row with id %v", record[FieldId])
	}
	return nil
}

func (r *SqliteMetadataRegistry) Close() error {
	return r.db.Close()
}
