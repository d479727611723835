package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/turbot/tailpipe-extractor/constants"
	"github.com/turbot/tailpipe-extractor/types"
	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"
)

// DefinitionStore returns persisted definitions by name
type DefinitionStore interface {
	Get(name string) (*types.ExtractorDefinition, bool)
}

// Manager runs a set of extractors
type Manager struct {
	extractors     map[string]*Extractor
	maxConcurrency int
}

func NewManager(maxConcurrency int, extractors ...*Extractor) (*Manager, error) {
	if maxConcurrency < 1 {
		maxConcurrency = constants.DefaultMaxConcurrentExtractors
	}
	m := &Manager{
		extractors:     make(map[string]*Extractor, len(extractors)),
		maxConcurrency: maxConcurrency,
	}
	for _, e := range extractors {
		if _, ok := m.extractors[e.Name()]; ok {
			return nil, fmt.Errorf("duplicate extractor '%s'", e.Name())
		}
		m.extractors[e.Name()] = e
	}
	return m, nil
}

func (m *Manager) Get(name string) (*Extractor, bool) {
	e, ok := m.extractors[name]
	return e, ok
}

// Names returns the sorted extractor names
func (m *Manager) Names() []string {
	names := maps.Keys(m.extractors)
	sort.Strings(names)
	return names
}

// RestoreState copies the persisted LastExecution of each extractor into its definition
func (m *Manager) RestoreState(s DefinitionStore) {
	for name, e := range m.extractors {
		persisted, ok := s.Get(name)
		if !ok || persisted.LastExecution == "" {
			continue
		}
		def := e.Definition()
		def.LastExecution = persisted.LastExecution
		e.SetDefinition(def)
	}
}

// StartAll starts the named extractors, or all extractors if no names are given
// extractors run concurrently, up to the manager concurrency limit
func (m *Manager) StartAll(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = m.Names()
	}

	toStart := make([]*Extractor, 0, len(names))
	for _, name := range names {
		e, ok := m.extractors[name]
		if !ok {
			return fmt.Errorf("extractor '%s' not found", name)
		}
		toStart = append(toStart, e)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.maxConcurrency)
	for _, e := range toStart {
		e := e
		g.Go(func() error {
			if !e.CanStart() {
				slog.Info("Extractor cannot start", "extractor", e.Name(), "status", e.Status())
				return nil
			}
			e.Start(ctx)
			return nil
		})
	}
	return g.Wait()
}

// StopAll stops every extractor
func (m *Manager) StopAll() {
	for _, e := range m.extractors {
		e.Stop()
	}
}
