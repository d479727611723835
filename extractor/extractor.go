package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/turbot/tailpipe-extractor/artifact_expander"
	"github.com/turbot/tailpipe-extractor/artifact_source"
	"github.com/turbot/tailpipe-extractor/constants"
	"github.com/turbot/tailpipe-extractor/data_source"
	"github.com/turbot/tailpipe-extractor/events"
	"github.com/turbot/tailpipe-extractor/observable"
	"github.com/turbot/tailpipe-extractor/registry"
	"github.com/turbot/tailpipe-extractor/store"
	"github.com/turbot/tailpipe-extractor/types"
	"github.com/turbot/tailpipe-extractor/workspace"
)

// ErrFailedLoad is returned by Extract for an extractor whose data source or store could not be resolved
var ErrFailedLoad = errors.New("extractor failed to load")

// Extractor fetches the file named by its definition, stages and optionally expands it,
// stores its records in the data source and records the run
//
// At most one run is in flight at a time. Start and Extract called while a run is in flight return immediately.
type Extractor struct {
	observable.ObservableImpl

	// guards status and inFlight
	mut      sync.Mutex
	status   Status
	inFlight bool

	defLock sync.RWMutex
	def     *types.ExtractorDefinition

	// resolved by load - both are nil after a failed load
	dataSources data_source.Registry
	dataSource  data_source.DataSource
	store       store.Store

	fetcher           *artifact_source.Fetcher
	workspaces        *workspace.Manager
	expanders         *artifact_expander.ExpanderFactory
	extractorRegistry registry.ExtractorRegistry
	metadataRegistry  registry.MetadataRegistry
	metadataTimeout   time.Duration
	now               func() time.Time
}

// New creates an extractor for the definition
// if the data source cannot be resolved, or there is no store for the definition type, the extractor is
// created with status FAILED_LOAD and stays unable to run until SetDefinition supplies a definition which loads
func New(def *types.ExtractorDefinition, dataSources data_source.Registry, opts ...ExtractorOption) (*Extractor, error) {
	if def == nil {
		return nil, fmt.Errorf("extractor definition is required")
	}

	e := &Extractor{
		def:             def.Clone(),
		dataSources:     dataSources,
		status:          StatusLoaded,
		expanders:       artifact_expander.Factory,
		metadataTimeout: constants.DefaultMetadataTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.fetcher == nil {
		f, err := artifact_source.NewFetcher(nil)
		if err != nil {
			return nil, err
		}
		e.fetcher = f
	}
	if e.workspaces == nil {
		e.workspaces = workspace.NewManager("")
	}

	if err := e.load(e.def); err != nil {
		slog.Error("Failed to load extractor", "extractor", def.Name, "error", err)
		e.status = StatusFailedLoad
		return e, nil
	}

	slog.Info("Loaded extractor", "extractor", def.Name, "data_source", def.DataSource, "type", e.store.Type())
	return e, nil
}

// load resolves the data source and store of the definition
// a store set with WithStore is kept
func (e *Extractor) load(def *types.ExtractorDefinition) error {
	if e.dataSources == nil {
		return fmt.Errorf("no data source registry")
	}
	ds, ok := e.dataSources.Resolve(def.DataSource)
	if !ok {
		return fmt.Errorf("data source '%s' not found", def.DataSource)
	}

	s := e.store
	if s == nil {
		var err error
		if s, err = store.Factory.GetStore(def.Type, def.Options, ds); err != nil {
			return err
		}
	}
	e.dataSource = ds
	e.store = s
	return nil
}

func (e *Extractor) loaded() bool {
	return e.dataSource != nil && e.store != nil
}

func (e *Extractor) Name() string {
	e.defLock.RLock()
	defer e.defLock.RUnlock()
	return e.def.Name
}

// Status returns the name of the current status
func (e *Extractor) Status() string {
	return e.State().String()
}

func (e *Extractor) State() Status {
	e.mut.Lock()
	defer e.mut.Unlock()
	return e.status
}

// CanStart returns whether Start would begin a run
func (e *Extractor) CanStart() bool {
	e.mut.Lock()
	defer e.mut.Unlock()
	return e.canStart()
}

func (e *Extractor) canStart() bool {
	return !e.inFlight && e.loaded() && e.status.restartable()
}

// Start runs an extraction if the extractor can start
// errors are logged and not returned - the extractor is always left restartable (unless aborted)
func (e *Extractor) Start(ctx context.Context) {
	if err := e.run(ctx, true); err != nil {
		slog.Error("Extraction failed", "extractor", e.Name(), "error", err)
	}
}

// Stop sets the status to STOPPED
// a run in flight is not cancelled, and sets the status to STARTED when it completes
func (e *Extractor) Stop() {
	e.setStatus(context.Background(), StatusStopped)
}

// Extract runs an extraction
// it returns nil immediately if a run is already in flight
func (e *Extractor) Extract(ctx context.Context) error {
	return e.run(ctx, false)
}

// SetStatus overrides the status, e.g. to restart an aborted extractor
func (e *Extractor) SetStatus(status Status) {
	e.setStatus(context.Background(), status)
}

// Definition returns a copy of the definition
func (e *Extractor) Definition() *types.ExtractorDefinition {
	e.defLock.RLock()
	defer e.defLock.RUnlock()
	return e.def.Clone()
}

// SetDefinition replaces the definition
// a loaded extractor keeps its data source and store, an extractor which failed to load is loaded again
func (e *Extractor) SetDefinition(def *types.ExtractorDefinition) {
	if def == nil {
		return
	}
	e.defLock.Lock()
	e.def = def.Clone()
	e.defLock.Unlock()

	e.mut.Lock()
	if e.inFlight || e.loaded() {
		e.mut.Unlock()
		return
	}
	from := e.status
	if err := e.load(def); err != nil {
		slog.Error("Failed to load extractor", "extractor", def.Name, "error", err)
		e.status = StatusFailedLoad
	} else {
		e.status = StatusLoaded
	}
	to := e.status
	e.mut.Unlock()

	if from != to {
		e.notifyStatus(context.Background(), from, to)
	}
}

func (e *Extractor) DataSource() data_source.DataSource {
	return e.dataSource
}

func (e *Extractor) setStatus(ctx context.Context, status Status) {
	e.mut.Lock()
	from := e.status
	e.status = status
	e.mut.Unlock()

	e.notifyStatus(ctx, from, status)
}

// run executes a single extraction, enforcing single flight
// if requireStartable is set the run only begins if CanStart is true
func (e *Extractor) run(ctx context.Context, requireStartable bool) (err error) {
	e.mut.Lock()
	if e.inFlight {
		e.mut.Unlock()
		return nil
	}
	// an extractor which failed to load never runs, whatever its status was set to
	if !e.loaded() {
		from := e.status
		e.status = StatusFailedLoad
		e.mut.Unlock()
		if from != StatusFailedLoad {
			e.notifyStatus(ctx, from, StatusFailedLoad)
		}
		if requireStartable {
			return nil
		}
		return ErrFailedLoad
	}
	if requireStartable && !e.canStart() {
		e.mut.Unlock()
		return nil
	}
	e.inFlight = true
	from := e.status
	e.status = StatusExtracting
	e.mut.Unlock()

	e.notifyStatus(ctx, from, StatusExtracting)

	// restore the state on every exit path, including a panic
	defer func() {
		e.finish(ctx, err)
	}()

	return e.extract(ctx)
}

// finish ends a run: the status is ABORTED if the run was cut short by cancellation of ctx,
// otherwise STARTED, replacing any status set by Stop or SetStatus during the run
func (e *Extractor) finish(ctx context.Context, err error) {
	e.mut.Lock()
	e.inFlight = false
	from := e.status
	if cancelled(ctx, err) {
		e.status = StatusAborted
	} else {
		e.status = StatusStarted
	}
	to := e.status
	e.mut.Unlock()

	if from != to {
		e.notifyStatus(context.WithoutCancel(ctx), from, to)
	}
}

func (e *Extractor) notifyStatus(ctx context.Context, from, to Status) {
	e.notify(ctx, events.NewStatusChangedEvent(e.Name(), from.String(), to.String()))
}

func (e *Extractor) notify(ctx context.Context, ev events.Event) {
	if err := e.NotifyObservers(ctx, ev); err != nil {
		slog.Warn("Observer failed", "extractor", e.Name(), "event", fmt.Sprintf("%T", ev), "error", err)
	}
}

// cancelled returns whether err is the result of ctx being cancelled
func cancelled(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
