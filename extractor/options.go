package extractor

import (
	"time"

	"github.com/turbot/tailpipe-extractor/artifact_expander"
	"github.com/turbot/tailpipe-extractor/artifact_source"
	"github.com/turbot/tailpipe-extractor/observable"
	"github.com/turbot/tailpipe-extractor/registry"
	"github.com/turbot/tailpipe-extractor/store"
	"github.com/turbot/tailpipe-extractor/workspace"
)

type ExtractorOption func(*Extractor)

// WithFetcher sets the fetcher - extractors sharing a fetcher share its download limiter
func WithFetcher(f *artifact_source.Fetcher) ExtractorOption {
	return func(e *Extractor) {
		e.fetcher = f
	}
}

func WithWorkspaceManager(m *workspace.Manager) ExtractorOption {
	return func(e *Extractor) {
		e.workspaces = m
	}
}

func WithExpanderFactory(f *artifact_expander.ExpanderFactory) ExtractorOption {
	return func(e *Extractor) {
		e.expanders = f
	}
}

func WithExtractorRegistry(r registry.ExtractorRegistry) ExtractorOption {
	return func(e *Extractor) {
		e.extractorRegistry = r
	}
}

func WithMetadataRegistry(r registry.MetadataRegistry) ExtractorOption {
	return func(e *Extractor) {
		e.metadataRegistry = r
	}
}

// WithStore sets the store, instead of creating one for the definition type
func WithStore(s store.Store) ExtractorOption {
	return func(e *Extractor) {
		e.store = s
	}
}

// WithClock sets the function used to timestamp successful runs
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		e.now = now
	}
}

// WithMetadataTimeout bounds the data source metadata update
func WithMetadataTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		e.metadataTimeout = d
	}
}

func WithObserver(o observable.Observer) ExtractorOption {
	return func(e *Extractor) {
		_ = e.AddObserver(o)
	}
}
