package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/turbot/tailpipe-extractor/types"
	"golang.org/x/exp/maps"
)

// FileExtractorRegistry stores extractor definitions in a JSON state file
type FileExtractorRegistry struct {
	Mut        sync.RWMutex                          `json:"-"`
	Extractors map[string]*types.ExtractorDefinition `json:"extractors"`

	// path to the serialised state JSON
	jsonPath string
}

// NewFileExtractorRegistry loads the registry from path, if the file exists
func NewFileExtractorRegistry(path string) (*FileExtractorRegistry, error) {
	r := &FileExtractorRegistry{
		Extractors: make(map[string]*types.ExtractorDefinition),
		jsonPath:   path,
	}

	if _, err := os.Stat(path); err == nil {
		jsonBytes, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read extractor state file: %w", err)
		}
		if err := json.Unmarshal(jsonBytes, r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extractor state file: %w", err)
		}
		if r.Extractors == nil {
			r.Extractors = make(map[string]*types.ExtractorDefinition)
		}
	}
	return r, nil
}

// UpdateObj stores a copy of the definition and saves the state file
func (r *FileExtractorRegistry) UpdateObj(_ context.Context, def *types.ExtractorDefinition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("extractor definition must have a name")
	}

	r.Mut.Lock()
	defer r.Mut.Unlock()

	r.Extractors[def.Name] = def.Clone()
	return r.save()
}

// Get returns a copy of the named definition
func (r *FileExtractorRegistry) Get(name string) (*types.ExtractorDefinition, bool) {
	r.Mut.RLock()
	defer r.Mut.RUnlock()

	def, ok := r.Extractors[name]
	if !ok {
		return nil, false
	}
	return def.Clone(), true
}

func (r *FileExtractorRegistry) Names() []string {
	r.Mut.RLock()
	defer r.Mut.RUnlock()

	names := maps.Keys(r.Extractors)
	sort.Strings(names)
	return names
}

func (r *FileExtractorRegistry) save() error {
	if r.jsonPath == "" {
		return fmt.Errorf("extractor state path is not set")
	}

	jsonBytes, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.jsonPath), 0755); err != nil {
		return fmt.Errorf("failed to create extractor state directory: %w", err)
	}
	// write to a temp file then rename so a failed write never truncates the existing state
	tmpPath := r.jsonPath + ".tmp"
	if err := os.WriteFile(tmpPath, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write extractor state to file: %w", err)
	}
	if err := os.Rename(tmpPath, r.jsonPath); err != nil {
		return fmt.Errorf("failed to write extractor state to file: %w", err)
	}
	return nil
}
