package artifact_source

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const FileSystemSourceIdentifier = "file_system"

// FileSystemSource resolves local artifact locations
// local artifacts are used in place and never copied
type FileSystemSource struct {
	// the application root which relative locations are resolved against
	AppRoot string
}

func NewFileSystemSource(appRoot string) (*FileSystemSource, error) {
	if appRoot != "" {
		expanded, err := homedir.Expand(appRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to expand app root '%s': %w", appRoot, err)
		}
		appRoot = expanded
	}
	return &FileSystemSource{AppRoot: appRoot}, nil
}

func (s *FileSystemSource) Identifier() string {
	return FileSystemSourceIdentifier
}

// Resolve returns the local path for the location and its size
// the location must name an existing file
func (s *FileSystemSource) Resolve(location string) (string, int64, error) {
	localPath, err := s.localPath(location)
	if err != nil {
		return "", 0, err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to resolve local artifact '%s': %w", localPath, err)
	}
	if info.IsDir() {
		return "", 0, fmt.Errorf("local artifact '%s' is a directory", localPath)
	}
	return localPath, info.Size(), nil
}

func (s *FileSystemSource) localPath(location string) (string, error) {
	// file URLs are always absolute
	if u, err := url.Parse(location); err == nil && strings.EqualFold(u.Scheme, "file") {
		return filepath.FromSlash(u.Path), nil
	}

	if strings.HasPrefix(location, "~") {
		return homedir.Expand(location)
	}

	if s.AppRoot != "" {
		return filepath.Join(s.AppRoot, location), nil
	}
	return location, nil
}
