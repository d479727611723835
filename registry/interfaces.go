package registry

import (
	"context"

	"github.com/turbot/tailpipe-extractor/types"
)

// ExtractorRegistry persists extractor definitions
type ExtractorRegistry interface {
	UpdateObj(ctx context.Context, def *types.ExtractorDefinition) error
}

// MetadataRegistry is the auxiliary registry of data source metadata
type MetadataRegistry interface {
	// Fetch returns the records matching every field of the query
	Fetch(ctx context.Context, query map[string]any) ([]types.Record, error)
	// UpdateObj writes back a record previously returned by Fetch
	UpdateObj(ctx context.Context, record types.Record) error
}
