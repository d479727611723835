package artifact_expander

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

const ZipExpanderIdentifier = "zip"

// ZipExpander expands every entry of a zip archive into the destination directory
type ZipExpander struct{}

func NewZipExpander() Expander {
	return &ZipExpander{}
}

func (z *ZipExpander) Identifier() string {
	return ZipExpanderIdentifier
}

func (z *ZipExpander) Expand(ctx context.Context, archivePath, destDir, _ string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("error opening zip archive %s: %w", archivePath, err)
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}

	count := 0
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := entryPath(root, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("error creating directory %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
		count++
	}
	slog.Debug("Expanded zip archive", "archive", archivePath, "dest", destDir, "files", count)
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", target, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("error opening zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("error extracting zip entry %s: %w", f.Name, err)
	}
	return out.Close()
}

// entryPath returns the path of the entry under root
// entries which would be written outside root are rejected
func entryPath(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("zip entry %s escapes the destination directory", name)
	}
	return target, nil
}
