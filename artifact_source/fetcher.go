package artifact_source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/turbot/tailpipe-extractor/rate_limiter"
	"github.com/turbot/tailpipe-extractor/types"
)

// Fetcher makes the artifact named by an extractor file location available on the local file system
// remote artifacts are downloaded into a caller supplied directory, local artifacts are used in place
type Fetcher struct {
	config     *FetchConfig
	fileSystem *FileSystemSource
	factory    *SourceFactory
	limiter    *rate_limiter.Limiter

	// remote sources, keyed by scheme, created on first use
	sources    map[string]Source
	sourceLock sync.RWMutex
}

type FetcherOption func(*Fetcher) error

// WithAppRoot sets the directory which relative local locations are resolved against
func WithAppRoot(appRoot string) FetcherOption {
	return func(f *Fetcher) error {
		fs, err := NewFileSystemSource(appRoot)
		if err != nil {
			return err
		}
		f.fileSystem = fs
		return nil
	}
}

// WithSource registers a source instance for the given scheme, overriding the factory
func WithSource(scheme string, source Source) FetcherOption {
	return func(f *Fetcher) error {
		f.sources[scheme] = source
		return nil
	}
}

// WithLimiter shares a download limiter between fetchers
func WithLimiter(limiter *rate_limiter.Limiter) FetcherOption {
	return func(f *Fetcher) error {
		f.limiter = limiter
		return nil
	}
}

func NewFetcher(cfg *FetchConfig, opts ...FetcherOption) (*Fetcher, error) {
	if cfg == nil {
		cfg = &FetchConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fetch config: %w", err)
	}

	f := &Fetcher{
		config:     cfg,
		fileSystem: &FileSystemSource{},
		factory:    Factory,
		sources:    make(map[string]Source),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	if f.limiter == nil {
		f.limiter = rate_limiter.NewLimiter(&rate_limiter.Definition{
			Name:           "download",
			MaxConcurrency: int64(cfg.GetMaxConcurrency()),
		})
	}
	return f, nil
}

// ArtifactInfo classifies the location
// an absolute URL with a scheme which has a registered source is remote, anything else is local
func (f *Fetcher) ArtifactInfo(location string) *types.ArtifactInfo {
	u, err := url.Parse(location)
	if err == nil && u.IsAbs() && f.supports(u.Scheme) {
		return types.NewArtifactInfo(location, u.Scheme, u)
	}
	return types.NewArtifactInfo(location, FileSystemSourceIdentifier, nil)
}

// Fetch makes the artifact at location available locally
// a remote artifact is downloaded to destDir/fileName - on failure nothing is left behind
func (f *Fetcher) Fetch(ctx context.Context, location, destDir, fileName string) (*types.DownloadedArtifactInfo, error) {
	info := f.ArtifactInfo(location)

	if !info.IsRemote() {
		localPath, size, err := f.fileSystem.Resolve(location)
		if err != nil {
			return nil, err
		}
		slog.Debug("Using local artifact", "location", location, "path", localPath)
		return types.NewDownloadedArtifactInfo(info, localPath, size), nil
	}

	source, err := f.resolveSource(info.URL.Scheme)
	if err != nil {
		return nil, err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed waiting for download slot: %w", err)
	}
	defer f.limiter.Release()

	localPath := filepath.Join(destDir, fileName)
	slog.Info("Downloading artifact", "location", info.URL.Redacted(), "source", source.Identifier(), "path", localPath)

	size, err := source.Download(ctx, info.URL, localPath)
	if err != nil {
		// remove any partial download
		if removeErr := os.Remove(localPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			slog.Warn("Failed to remove partial download", "path", localPath, "error", removeErr)
		}
		return nil, fmt.Errorf("failed to download '%s': %w", info.URL.Redacted(), err)
	}

	slog.Debug("Downloaded artifact", "location", info.URL.Redacted(), "bytes", size)
	return types.NewDownloadedArtifactInfo(info, localPath, size), nil
}

// Close closes all sources created by the fetcher
func (f *Fetcher) Close() error {
	f.sourceLock.Lock()
	defer f.sourceLock.Unlock()

	var errs []error
	for _, s := range f.sources {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fetcher) supports(scheme string) bool {
	f.sourceLock.RLock()
	_, ok := f.sources[scheme]
	f.sourceLock.RUnlock()
	return ok || f.factory.Supports(scheme)
}

func (f *Fetcher) resolveSource(scheme string) (Source, error) {
	f.sourceLock.RLock()
	s, ok := f.sources[scheme]
	f.sourceLock.RUnlock()
	if ok {
		return s, nil
	}

	f.sourceLock.Lock()
	defer f.sourceLock.Unlock()

	// check again in case another goroutine created it
	if s, ok := f.sources[scheme]; ok {
		return s, nil
	}

	s, err := f.factory.GetSource(scheme, f.config)
	if err != nil {
		return nil, err
	}
	f.sources[scheme] = s
	return s, nil
}
