package extractor

import (
	"context"
	"fmt"

	"github.com/turbot/go-kit/helpers"
	"github.com/turbot/tailpipe-extractor/constants"
	"github.com/turbot/tailpipe-extractor/events"
	"github.com/turbot/tailpipe-extractor/registry"
)

// finalize records a successful run
// - the definition LastExecution is set to now
// - the data source metadata record is stamped (best effort)
// - the definition is persisted to the extractor registry
func (e *Extractor) finalize(ctx context.Context, x *execution) error {
	stamp := e.now().Format(constants.TimestampLayout)

	e.defLock.Lock()
	e.def.LastExecution = stamp
	def := e.def.Clone()
	e.defLock.Unlock()
	x.lastExecution = stamp

	e.updateMetadata(ctx, x, def.DataSource, stamp)

	if e.extractorRegistry == nil {
		x.logger.Debug("No extractor registry - definition not persisted")
		return nil
	}
	if err := e.extractorRegistry.UpdateObj(ctx, def); err != nil {
		return fmt.Errorf("failed to update extractor registry: %w", err)
	}
	return nil
}

// updateMetadata sets the updated field of the data source metadata record
// failures are logged and published but never fail the run
func (e *Extractor) updateMetadata(ctx context.Context, x *execution, dataSource, stamp string) {
	if e.metadataRegistry == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, e.metadataTimeout)
	defer cancel()

	// run in a goroutine so a registry which ignores the context cannot hold up the run
	done := make(chan error, 1)
	go func() {
		done <- stampMetadata(ctx, e.metadataRegistry, dataSource, stamp)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("timed out: %w", ctx.Err())
	}
	if err != nil {
		err = fmt.Errorf("failed to update %s metadata for data source %s: %w", constants.MetadataRegistryName, dataSource, err)
		x.logger.Warn("Failed to update data source metadata", "data_source", dataSource, "error", err)
		e.notify(context.WithoutCancel(ctx), events.NewErrorEvent(x.id, err))
	}
}

func stampMetadata(ctx context.Context, r registry.MetadataRegistry, dataSource, stamp string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = helpers.ToError(p)
		}
	}()

	records, err := r.Fetch(ctx, map[string]any{registry.FieldName: dataSource})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	record := records[0]
	record[registry.FieldUpdated] = stamp
	return r.UpdateObj(ctx, record)
}
