package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/turbot/tailpipe-extractor/constants"
	"github.com/turbot/tailpipe-extractor/context_values"
	"github.com/turbot/tailpipe-extractor/events"
	"github.com/turbot/tailpipe-extractor/store"
	"github.com/turbot/tailpipe-extractor/types"
)

// execution is the state of a single run
type execution struct {
	id     string
	def    *types.ExtractorDefinition
	logger *slog.Logger
	timing types.TimingCollection
	// set by the finalizer
	lastExecution string
}

func (x *execution) track(operation string) func() {
	t := types.Timing{}
	t.TryStart(operation)
	return func() {
		t.End = time.Now()
		x.timing = append(x.timing, t)
	}
}

// extract runs the pipeline: fetch, stage, expand, store, finalize
// each stage only runs if the previous one succeeded
func (e *Extractor) extract(ctx context.Context) (err error) {
	x := &execution{
		id:  xid.New().String(),
		def: e.Definition(),
	}
	x.logger = slog.With("extractor", x.def.Name, "execution_id", x.id)
	ctx = context_values.WithExecutionId(ctx, x.id)

	e.notify(ctx, events.NewStartedEvent(x.id, x.def.Name))
	defer func() {
		e.notify(context.WithoutCancel(ctx), events.NewCompletedEvent(x.id, x.def.Name, x.lastExecution, x.timing, err))
		x.logger.Debug("Extraction complete", "timing", x.timing.String())
	}()

	// configuration aborts - nothing to do for this run
	if x.def.FileLocation == "" {
		x.logger.Info("No file location - nothing to extract")
		return nil
	}
	if x.def.Zipped && x.def.ZipPath == "" {
		x.logger.Warn("Zipped extractor has no zip path - nothing to extract")
		return nil
	}

	dir, err := e.workspaces.Create()
	if err != nil {
		return fmt.Errorf("failed to create staging workspace: %w", err)
	}
	owned := false
	defer func() {
		if !owned {
			e.workspaces.Destroy(dir)
		}
	}()

	// fetch
	done := x.track("fetch")
	downloaded, err := e.fetcher.Fetch(ctx, x.def.FileLocation, dir, e.stagedFileName(x.def))
	done()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("fetch cancelled: %w", ctx.Err())
		}
		// transport errors end the run without an error - the next run tries again
		x.logger.Error("Failed to fetch artifact", "location", x.def.FileLocation, "error", err)
		e.notify(ctx, events.NewErrorEvent(x.id, err))
		return nil
	}
	e.notify(ctx, events.NewArtifactDownloadedEvent(x.id, downloaded))

	artifact := &types.StagedArtifact{
		Dir:            dir,
		Path:           downloaded.LocalName,
		SourceLocation: x.def.FileLocation,
	}

	// expand
	if x.def.Zipped {
		done := x.track("expand")
		innerPath, err := e.expand(ctx, x, downloaded.LocalName, dir)
		done()
		if err != nil {
			return err
		}
		if innerPath == "" {
			return nil
		}
		artifact.Path = innerPath
	}

	// store
	x.logger.Info("Storing data", "path", artifact.Path, "type", e.store.Type())
	done = x.track("store")
	err = e.store.Store(ctx, artifact)
	done()
	if wo, ok := e.store.(store.WorkspaceOwner); ok && wo.OwnsWorkspace() {
		owned = true
	}
	if err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}
	e.notify(ctx, events.NewArtifactStoredEvent(x.id, artifact))

	// finalize
	done = x.track("finalize")
	defer done()
	return e.finalize(ctx, x)
}

// stagedFileName is the name given to a downloaded artifact
// an archive keeps the bare name, any other file gets the store type as extension
func (e *Extractor) stagedFileName(def *types.ExtractorDefinition) string {
	if def.Zipped {
		return constants.RemoteFileName
	}
	return constants.RemoteFileName + "." + strings.ToLower(e.store.Type())
}

// expand expands the archive into the workspace and returns the path of the zip path inside it
// an empty path with no error means the zip path is invalid and the run ends without an error
func (e *Extractor) expand(ctx context.Context, x *execution, archivePath, dir string) (string, error) {
	innerPath := filepath.Join(dir, filepath.FromSlash(x.def.ZipPath))
	rel, err := filepath.Rel(dir, innerPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		x.logger.Warn("Zip path is outside the archive", "zip_path", x.def.ZipPath)
		return "", nil
	}

	expander, err := e.expanders.Resolve(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve expander: %w", err)
	}

	x.logger.Info("Expanding archive", "archive", archivePath, "expander", expander.Identifier())
	if err := expander.Expand(ctx, archivePath, dir, x.def.ZipPath); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("expansion cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to expand %s: %w", archivePath, err)
	}
	e.notify(ctx, events.NewArtifactExpandedEvent(x.id, expander.Identifier(), dir))

	if _, err := os.Stat(innerPath); err != nil {
		x.logger.Warn("Zip path not found in archive", "zip_path", x.def.ZipPath, "error", err)
		e.notify(ctx, events.NewErrorEvent(x.id, fmt.Errorf("zip path %s not found in archive: %w", x.def.ZipPath, err)))
		return "", nil
	}
	return innerPath, nil
}
