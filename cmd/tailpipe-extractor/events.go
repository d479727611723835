package main

import (
	"context"
	"log/slog"

	"github.com/turbot/tailpipe-extractor/events"
	"github.com/turbot/tailpipe-extractor/observable"
)

// newEventLogger returns an observer which logs the progress of each run
func newEventLogger() observable.Observer {
	return observable.ObserverFunc(func(_ context.Context, e events.Event) error {
		switch ev := e.(type) {
		case *events.StatusChanged:
			slog.Debug("Extractor status changed", "extractor", ev.Extractor, "from", ev.From, "to", ev.To)
		case *events.ArtifactDownloaded:
			slog.Debug("Artifact downloaded", "execution_id", ev.ExecutionId, "path", ev.Info.LocalName, "size", ev.Info.Size)
		case *events.Error:
			slog.Warn("Extraction error", "execution_id", ev.ExecutionId, "error", ev.Err)
		case *events.Completed:
			if ev.Err != nil {
				slog.Error("Extraction failed", "extractor", ev.Extractor, "execution_id", ev.ExecutionId, "error", ev.Err)
				return nil
			}
			slog.Info("Extraction complete", "extractor", ev.Extractor, "execution_id", ev.ExecutionId, "last_execution", ev.LastExecution, "timing", ev.Timing.String())
		}
		return nil
	})
}
