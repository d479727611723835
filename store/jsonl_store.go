package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/turbot/tailpipe-extractor/data_source"
	"github.com/turbot/tailpipe-extractor/types"
)

const JsonlStoreIdentifier = "jsonl"

// max size of a single JSONL line
const maxJsonlLineSize = 10 * 1024 * 1024

// JsonlStore reads files containing one JSON object per line
type JsonlStore struct {
	StoreImpl
}

func NewJsonlStore(ds data_source.DataSource, opts map[string]string) (Store, error) {
	return &JsonlStore{
		StoreImpl: NewStoreImpl(ds, opts, ".jsonl", ".json", ".ndjson"),
	}, nil
}

func (s *JsonlStore) Type() string {
	return JsonlStoreIdentifier
}

func (s *JsonlStore) Store(ctx context.Context, artifact *types.StagedArtifact) error {
	return s.storeFiles(ctx, artifact, s.parse)
}

func (s *JsonlStore) parse(ctx context.Context, path string, emit func(types.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxJsonlLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		var record types.Record
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := emit(record); err != nil {
			return err
		}
	}
	return scanner.Err()
}
