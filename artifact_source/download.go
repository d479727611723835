package artifact_source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/turbot/tailpipe-extractor/helpers"
)

// writeFile copies the contents of r to localPath, creating the parent directory if needed
// on failure the partially written file is removed
func writeFile(ctx context.Context, localPath string, r io.Reader) (n int64, err error) {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", localPath, err)
	}
	f, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", localPath, err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close file %s: %w", localPath, closeErr)
		}
		if err != nil {
			_ = os.Remove(localPath)
		}
	}()

	n, err = io.Copy(f, helpers.NewContextReader(ctx, r))
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	return n, nil
}
