package events

import (
	"github.com/turbot/tailpipe-extractor/types"
)

type ArtifactDownloaded struct {
	Base
	ExecutionId string
	Info        *types.DownloadedArtifactInfo
}

func NewArtifactDownloadedEvent(executionId string, info *types.DownloadedArtifactInfo) *ArtifactDownloaded {
	return &ArtifactDownloaded{
		ExecutionId: executionId,
		Info:        info,
	}
}

type ArtifactExpanded struct {
	Base
	ExecutionId string
	// the expander which was used
	Expander string
	Dir      string
}

func NewArtifactExpandedEvent(executionId, expander, dir string) *ArtifactExpanded {
	return &ArtifactExpanded{
		ExecutionId: executionId,
		Expander:    expander,
		Dir:         dir,
	}
}

type ArtifactStored struct {
	Base
	ExecutionId string
	Artifact    *types.StagedArtifact
}

func NewArtifactStoredEvent(executionId string, artifact *types.StagedArtifact) *ArtifactStored {
	return &ArtifactStored{
		ExecutionId: executionId,
		Artifact:    artifact,
	}
}
