package artifact_source

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// SourceCtor creates a Source from the fetch config
type SourceCtor func(*FetchConfig) Source

// Factory is the global SourceFactory instance
var Factory = newSourceFactory()

func init() {
	Factory.RegisterSources(NewHttpSource, NewAwsS3BucketSource, NewGcpStorageBucketSource)
}

type SourceFactory struct {
	// map of constructors keyed by URL scheme
	sourceFuncs map[string]SourceCtor
	mut         sync.RWMutex
}

func newSourceFactory() *SourceFactory {
	return &SourceFactory{
		sourceFuncs: make(map[string]SourceCtor),
	}
}

// RegisterSources registers source constructors against each of the schemes the source supports
func (f *SourceFactory) RegisterSources(ctors ...SourceCtor) {
	f.mut.Lock()
	defer f.mut.Unlock()
	for _, ctor := range ctors {
		// create an instance of the source to get the schemes
		s := ctor(&FetchConfig{})
		for _, scheme := range s.Schemes() {
			f.sourceFuncs[strings.ToLower(scheme)] = ctor
		}
	}
}

// Supports returns whether a source is registered for the scheme
func (f *SourceFactory) Supports(scheme string) bool {
	f.mut.RLock()
	defer f.mut.RUnlock()
	_, ok := f.sourceFuncs[strings.ToLower(scheme)]
	return ok
}

func (f *SourceFactory) Schemes() []string {
	f.mut.RLock()
	defer f.mut.RUnlock()
	return maps.Keys(f.sourceFuncs)
}

func (f *SourceFactory) GetSource(scheme string, cfg *FetchConfig) (Source, error) {
	f.mut.RLock()
	ctor, ok := f.sourceFuncs[strings.ToLower(scheme)]
	f.mut.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no source registered for scheme '%s'", scheme)
	}
	return ctor(cfg), nil
}
