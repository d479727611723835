package artifact_expander

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/turbot/tailpipe-extractor/helpers"
)

const GzipExpanderIdentifier = "gzip"

// GzipExpander decompresses a gzip file to destDir/innerPath
type GzipExpander struct{}

func NewGzipExpander() Expander {
	return &GzipExpander{}
}

func (g *GzipExpander) Identifier() string {
	return GzipExpanderIdentifier
}

func (g *GzipExpander) Expand(ctx context.Context, archivePath, destDir, innerPath string) error {
	if innerPath == "" {
		return fmt.Errorf("gzip expansion of %s requires an inner path", archivePath)
	}

	root, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}
	target, err := entryPath(root, innerPath)
	if err != nil {
		return err
	}

	gzFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", archivePath, err)
	}
	defer gzFile.Close()

	gzReader, err := gzip.NewReader(gzFile)
	if err != nil {
		return fmt.Errorf("error creating gzip reader for %s: %w", archivePath, err)
	}
	defer gzReader.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", target, err)
	}
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", target, err)
	}

	if _, err := io.Copy(out, helpers.NewContextReader(ctx, gzReader)); err != nil {
		_ = out.Close()
		return fmt.Errorf("error decompressing %s: %w", archivePath, err)
	}
	return out.Close()
}
