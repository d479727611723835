package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/tailpipe-extractor/types"
)

func TestFileExtractorRegistry_UpdateObj(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "extractors.json")

	r, err := NewFileExtractorRegistry(path)
	require.NoError(t, err)

	def := &types.ExtractorDefinition{
		Name:          "orders",
		DataSource:    "warehouse",
		FileLocation:  "s3://bucket/orders.zip",
		Zipped:        true,
		ZipPath:       "orders.csv",
		LastExecution: "2024-03-01 14:05:09",
		Type:          "csv",
		Options:       map[string]string{"delimiter": ";"},
	}
	require.NoError(t, r.UpdateObj(ctx, def))

	// the registry holds a copy
	def.Options["delimiter"] = ","
	got, ok := r.Get("orders")
	require.True(t, ok)
	assert.Equal(t, ";", got.Options["delimiter"])

	// reload from disk
	reloaded, err := NewFileExtractorRegistry(path)
	require.NoError(t, err)
	got, ok = reloaded.Get("orders")
	require.True(t, ok)
	def.Options["delimiter"] = ";"
	if diff := cmp.Diff(def, got); diff != "" {
		t.Errorf("reloaded definition mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"orders"}, reloaded.Names())
	assert.NoFileExists(t, path+".tmp")

	_, ok = reloaded.Get("missing")
	assert.False(t, ok)
}

func TestFileExtractorRegistry_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))

	_, err := NewFileExtractorRegistry(bad)
	assert.Error(t, err)

	r, err := NewFileExtractorRegistry(filepath.Join(dir, "ok.json"))
	require.NoError(t, err)
	assert.Error(t, r.UpdateObj(context.Background(), &types.ExtractorDefinition{}))
	assert.Error(t, r.UpdateObj(context.Background(), nil))
}

func TestSqliteMetadataRegistry(t *testing.T) {
	ctx := context.Background()
	r, err := NewSqliteMetadataRegistry(filepath.Join(t.TempDir(), "metadata.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Register(ctx, "warehouse"))
	// registering twice is a no-op
	require.NoError(t, r.Register(ctx, "warehouse"))
	require.NoError(t, r.Register(ctx, "archive"))

	tests := []struct {
		name      string
		query     map[string]any
		wantNames []string
		wantErr   bool
	}{
		{name: "all", query: nil, wantNames: []string{"warehouse", "archive"}},
		{name: "by name", query: map[string]any{"name": "archive"}, wantNames: []string{"archive"}},
		{name: "no match", query: map[string]any{"name": "missing"}},
		{name: "unknown field", query: map[string]any{"owner": "x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := r.Fetch(ctx, tt.query)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, rec := range records {
				names = append(names, rec.String(FieldName))
				assert.Nil(t, rec[FieldUpdated])
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}

	records, err := r.Fetch(ctx, map[string]any{"name": "warehouse"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	records[0][FieldUpdated] = "2024-03-01 14:05:09"
	require.NoError(t, r.UpdateObj(ctx, records[0]))

	records, err = r.Fetch(ctx, map[string]any{"name": "warehouse"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-03-01 14:05:09", records[0][FieldUpdated])

	assert.Error(t, r.UpdateObj(ctx, types.Record{FieldId: int64(999), FieldUpdated: "x"}))
	assert.Error(t, r.UpdateObj(ctx, types.Record{FieldUpdated: "x"}))
}
