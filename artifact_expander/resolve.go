package artifact_expander

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Factory is the global ExpanderFactory instance
var Factory = newExpanderFactory()

func init() {
	Factory.RegisterExpanders(NewZipExpander, NewGzipExpander)
}

type ExpanderFactory struct {
	ctors map[string]func() Expander

	// cache of expander instances, keyed by identifier
	expanders    map[string]Expander
	expanderLock sync.RWMutex
}

func newExpanderFactory() *ExpanderFactory {
	return &ExpanderFactory{
		ctors:     make(map[string]func() Expander),
		expanders: make(map[string]Expander),
	}
}

func (f *ExpanderFactory) RegisterExpanders(ctors ...func() Expander) {
	f.expanderLock.Lock()
	defer f.expanderLock.Unlock()
	for _, ctor := range ctors {
		// create an instance of the expander to get the identifier
		e := ctor()
		f.ctors[e.Identifier()] = ctor
	}
}

// Resolve returns the expander for the archive at path
// the file extension is checked first, then the leading bytes of the file, defaulting to zip
func (f *ExpanderFactory) Resolve(path string) (Expander, error) {
	identifier, err := detect(path)
	if err != nil {
		return nil, err
	}
	return f.GetExpander(identifier)
}

// GetExpander returns the cached expander instance for the identifier, creating it if needed
func (f *ExpanderFactory) GetExpander(identifier string) (Expander, error) {
	f.expanderLock.RLock()
	e, ok := f.expanders[identifier]
	f.expanderLock.RUnlock()
	if ok {
		return e, nil
	}

	f.expanderLock.Lock()
	defer f.expanderLock.Unlock()

	// check again in case another goroutine created it
	if e, ok := f.expanders[identifier]; ok {
		return e, nil
	}
	ctor, ok := f.ctors[identifier]
	if !ok {
		return nil, fmt.Errorf("no expander registered for '%s'", identifier)
	}
	e = ctor()
	f.expanders[identifier] = e
	return e, nil
}

func detect(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return ZipExpanderIdentifier, nil
	case ".gz", ".gzip":
		return GzipExpanderIdentifier, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening %s: %w", path, err)
	}
	defer file.Close()

	header := make([]byte, len(gzipMagic))
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("error reading %s: %w", path, err)
	}

	if bytes.Equal(header[:n], gzipMagic) {
		return GzipExpanderIdentifier, nil
	}
	return ZipExpanderIdentifier, nil
}
