package artifact_expander

import "context"

// Expander is an interface which provides a method for expanding a locally saved archive into a staging directory
// Expanders provided: [ZipExpander], [GzipExpander]
type Expander interface {
	Identifier() string
	// Expand the archive at archivePath into destDir
	// innerPath is the path of the file of interest, relative to destDir
	Expand(ctx context.Context, archivePath, destDir, innerPath string) error
}
