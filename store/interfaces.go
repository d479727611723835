package store

import (
	"context"

	"github.com/turbot/tailpipe-extractor/types"
)

// Store parses a staged artifact and writes its records to a data source
// Stores provided: [CsvStore], [JsonlStore], [AccessLogStore]
type Store interface {
	// Type is the artifact format handled by the store
	// lower-cased it is also the extension given to downloaded artifacts
	Type() string
	Store(ctx context.Context, artifact *types.StagedArtifact) error
}

// WorkspaceOwner is implemented by stores which take over the staging workspace
// if OwnsWorkspace returns true the store is responsible for deleting artifact.Dir
type WorkspaceOwner interface {
	OwnsWorkspace() bool
}
