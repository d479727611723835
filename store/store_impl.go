package store

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/turbot/tailpipe-extractor/constants"
	"github.com/turbot/tailpipe-extractor/context_values"
	"github.com/turbot/tailpipe-extractor/data_source"
	"github.com/turbot/tailpipe-extractor/types"
)

// StoreImpl is the base for all stores
// stores embed it and must implement Type and Store
type StoreImpl struct {
	DataSource data_source.DataSource
	Options    map[string]string
	// the number of records written to the data source in each insert
	BatchSize int
	// when the staged artifact is a directory, only files with these extensions are read
	Extensions types.ExtensionLookup
}

func NewStoreImpl(ds data_source.DataSource, opts map[string]string, extensions ...string) StoreImpl {
	return StoreImpl{
		DataSource: ds,
		Options:    opts,
		BatchSize:  constants.StoreBatchSize,
		Extensions: types.NewExtensionLookup(extensions),
	}
}

func (s *StoreImpl) Type() string {
	panic("Type must be implemented by the store")
}

func (s *StoreImpl) Store(context.Context, *types.StagedArtifact) error {
	panic("Store must be implemented by the store")
}

// Option returns the named option, or defaultValue if it is not set
func (s *StoreImpl) Option(name, defaultValue string) string {
	if v, ok := s.Options[name]; ok && v != "" {
		return v
	}
	return defaultValue
}

// parseFunc reads the file at path, calling emit for each record
type parseFunc func(ctx context.Context, path string, emit func(types.Record) error) error

// storeFiles parses every file of the staged artifact and writes the enriched records in batches
func (s *StoreImpl) storeFiles(ctx context.Context, artifact *types.StagedArtifact, parse parseFunc) error {
	if s.DataSource == nil {
		return fmt.Errorf("no data source")
	}

	files, err := s.files(artifact.Path)
	if err != nil {
		return err
	}

	w := s.newRecordWriter(ctx, artifact)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := parse(ctx, f, w.write); err != nil {
			return fmt.Errorf("error parsing %s: %w", f, err)
		}
	}
	if err := w.flush(); err != nil {
		return err
	}

	slog.Info("Stored artifact", "data_source", s.DataSource.Name(), "path", artifact.Path, "files", len(files), "records", w.count)
	return nil
}

// files returns path if it is a file, or every matching file under path if it is a directory
func (s *StoreImpl) files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error reading staged artifact: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var res []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !s.Extensions.IsValid(p) {
			return nil
		}
		res = append(res, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}
	sort.Strings(res)
	return res, nil
}

type recordWriter struct {
	ctx        context.Context
	ds         data_source.DataSource
	batchSize  int
	enrichment types.Record

	batch []types.Record
	count int
}

func (s *StoreImpl) newRecordWriter(ctx context.Context, artifact *types.StagedArtifact) *recordWriter {
	// execution id is optional - records written outside an extraction run are not tagged with one
	executionId, _ := context_values.ExecutionIdFromContext(ctx)
	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = constants.StoreBatchSize
	}
	return &recordWriter{
		ctx:       ctx,
		ds:        s.DataSource,
		batchSize: batchSize,
		enrichment: types.Record{
			constants.TpExecutionId:     executionId,
			constants.TpSourceLocation:  artifact.SourceLocation,
			constants.TpIngestTimestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func (w *recordWriter) write(r types.Record) error {
	for k, v := range w.enrichment {
		r[k] = v
	}
	w.batch = append(w.batch, r)
	if len(w.batch) >= w.batchSize {
		return w.flush()
	}
	return nil
}

func (w *recordWriter) flush() error {
	if len(w.batch) == 0 {
		return nil
	}
	if err := w.ds.Insert(w.ctx, w.batch); err != nil {
		return fmt.Errorf("error writing to data source %s: %w", w.ds.Name(), err)
	}
	w.count += len(w.batch)
	w.batch = nil
	return nil
}
