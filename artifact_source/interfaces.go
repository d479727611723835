package artifact_source

import (
	"context"
	"net/url"
)

// Source is the interface implemented by all remote artifact sources
// each source handles one or more URL schemes
type Source interface {
	Identifier() string
	Schemes() []string
	// Download copies the artifact identified by u to localPath and returns the number of bytes written
	Download(ctx context.Context, u *url.URL, localPath string) (int64, error)
	Close() error
}
