package extractor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
	"github.com/turbot/tailpipe-extractor/artifact_source"
	"github.com/turbot/tailpipe-extractor/data_source"
	"github.com/turbot/tailpipe-extractor/events"
	"github.com/turbot/tailpipe-extractor/types"
	"github.com/turbot/tailpipe-extractor/workspace"
)

type memoryDataSource struct {
	name    string
	mut     sync.Mutex
	records []types.Record
}

func (d *memoryDataSource) Identifier() string { return "memory" }
func (d *memoryDataSource) Name() string       { return d.name }
func (d *memoryDataSource) Close() error       { return nil }

func (d *memoryDataSource) Insert(_ context.Context, records []types.Record) error {
	d.mut.Lock()
	defer d.mut.Unlock()
	d.records = append(d.records, records...)
	return nil
}

func (d *memoryDataSource) Records() []types.Record {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.records
}

// fakeStore records each call and delegates to storeFunc if set
type fakeStore struct {
	mut       sync.Mutex
	calls     []*types.StagedArtifact
	storeFunc func(ctx context.Context, artifact *types.StagedArtifact) error
	owns      bool
}

func (s *fakeStore) Type() string { return "csv" }

func (s *fakeStore) Store(ctx context.Context, artifact *types.StagedArtifact) error {
	s.mut.Lock()
	s.calls = append(s.calls, artifact)
	s.mut.Unlock()
	if s.storeFunc != nil {
		return s.storeFunc(ctx, artifact)
	}
	return nil
}

func (s *fakeStore) Calls() []*types.StagedArtifact {
	s.mut.Lock()
	defer s.mut.Unlock()
	return s.calls
}

type owningStore struct {
	fakeStore
}

func (s *owningStore) OwnsWorkspace() bool { return true }

type eventRecorder struct {
	mut    sync.Mutex
	events []events.Event
}

func (r *eventRecorder) Notify(_ context.Context, e events.Event) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) errors() []*events.Error {
	r.mut.Lock()
	defer r.mut.Unlock()
	var res []*events.Error
	for _, e := range r.events {
		if ev, ok := e.(*events.Error); ok {
			res = append(res, ev)
		}
	}
	return res
}

func (r *eventRecorder) statuses() []string {
	r.mut.Lock()
	defer r.mut.Unlock()
	var res []string
	for _, e := range r.events {
		if ev, ok := e.(*events.StatusChanged); ok {
			res = append(res, ev.To)
		}
	}
	return res
}

// testEnv is an application root and workspace base dir for a single test
type testEnv struct {
	appRoot    string
	workspaces *workspace.Manager
	dataSource *memoryDataSource
	registry   *data_source.ConfigRegistry
	fetcher    *artifact_source.Fetcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		appRoot:    t.TempDir(),
		workspaces: workspace.NewManager(t.TempDir()),
		dataSource: &memoryDataSource{name: "ds"},
	}

	var err error
	env.registry, err = data_source.NewRegistry()
	require.NoError(t, err)
	env.registry.Register(env.dataSource)

	env.fetcher, err = artifact_source.NewFetcher(nil, artifact_source.WithAppRoot(env.appRoot))
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.fetcher.Close() })
	return env
}

func (env *testEnv) newExtractor(t *testing.T, def *types.ExtractorDefinition, opts ...ExtractorOption) *Extractor {
	t.Helper()
	opts = append([]ExtractorOption{WithFetcher(env.fetcher), WithWorkspaceManager(env.workspaces)}, opts...)
	e, err := New(def, env.registry, opts...)
	require.NoError(t, err)
	return e
}

// workspaceCount returns the number of workspaces which have not been destroyed
func (env *testEnv) workspaceCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(env.workspaces.BaseDir)
	require.NoError(t, err)
	return len(entries)
}

func (env *testEnv) writeFile(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(env.appRoot, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (env *testEnv) writeZip(t *testing.T, name string, files map[string]string) {
	t.Helper()
	f, err := os.Create(filepath.Join(env.appRoot, name))
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for entry, content := range files {
		fw, err := w.Create(entry)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}
