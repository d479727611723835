package types

import (
	"net/url"
)

// ArtifactInfo describes a resource named by an extractor file location
type ArtifactInfo struct {
	// the location as configured
	Name string `json:"name"`
	// the parsed URL - nil for local artifacts
	URL *url.URL `json:"-"`
	// the identifier of the source which resolves the artifact
	SourceType string `json:"source_type"`
}

func NewArtifactInfo(name string, sourceType string, u *url.URL) *ArtifactInfo {
	return &ArtifactInfo{
		Name:       name,
		URL:        u,
		SourceType: sourceType,
	}
}

// IsRemote returns whether the artifact must be downloaded
func (i *ArtifactInfo) IsRemote() bool {
	return i.URL != nil
}
