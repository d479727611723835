package data_source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/turbot/tailpipe-extractor/context_values"
	"github.com/turbot/tailpipe-extractor/types"
)

const JsonlDataSourceIdentifier = "jsonl"

// JsonlDataSource writes each batch of records to its own JSONL file
// files are named <executionId>-<chunkNumber>.jsonl
type JsonlDataSource struct {
	name    string
	destDir string

	// number of chunks written, keyed by execution id
	chunks map[string]int
	mut    sync.Mutex
}

func NewJsonlDataSource(cfg *Config) (DataSource, error) {
	return OpenJsonlDataSource(cfg.Name, cfg.Path)
}

func OpenJsonlDataSource(name, destDir string) (*JsonlDataSource, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create directory %s: %w", destDir, err)
	}
	return &JsonlDataSource{
		name:    name,
		destDir: destDir,
		chunks:  make(map[string]int),
	}, nil
}

func (j *JsonlDataSource) Identifier() string {
	return JsonlDataSourceIdentifier
}

func (j *JsonlDataSource) Name() string {
	return j.name
}

func (j *JsonlDataSource) Insert(ctx context.Context, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}
	executionId, err := context_values.ExecutionIdFromContext(ctx)
	if err != nil {
		return err
	}

	j.mut.Lock()
	chunkNumber := j.chunks[executionId]
	j.chunks[executionId] = chunkNumber + 1
	j.mut.Unlock()

	filename := filepath.Join(j.destDir, ExecutionIdToFileName(executionId, chunkNumber))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create JSONL file %s: %w", filename, err)
	}
	defer file.Close()

	slog.Debug("writing JSONL file", "file", filename, "rows", len(records))
	encoder := json.NewEncoder(file)
	for _, r := range records {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}
	return file.Close()
}

func (j *JsonlDataSource) Close() error {
	return nil
}

// ExecutionIdToFileName convert an execution id and chunk number to a filename
// assuming a convention of <executionId>-<chunkNumber>.jsonl
func ExecutionIdToFileName(executionId string, chunkNumber int) string {
	return fmt.Sprintf("%s-%d.jsonl", executionId, chunkNumber)
}

// FileNameToExecutionId convert a filename to an execution id
// assuming a convention of <executionId>-<chunkNumber>.jsonl
func FileNameToExecutionId(filename string) (string, error) {
	filename = strings.TrimSuffix(filepath.Base(filename), ".jsonl")
	lastDash := strings.LastIndex(filename, "-")
	if lastDash == -1 {
		return "", fmt.Errorf("invalid filename %s", filename)
	}
	return filename[:lastDash], nil
}
