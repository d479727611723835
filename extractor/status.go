package extractor

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an extractor
type Status int

const (
	// StatusLoaded - constructed, data source resolved, never run
	StatusLoaded Status = iota
	// StatusStarted - idle after a run
	StatusStarted
	// StatusExtracting - a run is in flight
	StatusExtracting
	// StatusStopped - stopped by the host, may be started again
	StatusStopped
	// StatusAborted - the last run was cancelled; SetStatus is required to restart
	StatusAborted
	// StatusFailedLoad - the data source or store could not be resolved; SetDefinition is required to load it again
	StatusFailedLoad
)

var statusNames = map[Status]string{
	StatusLoaded:     "LOADED",
	StatusStarted:    "STARTED",
	StatusExtracting: "EXTRACTING",
	StatusStopped:    "STOPPED",
	StatusAborted:    "ABORTED",
	StatusFailedLoad: "FAILED_LOAD",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus parses a status name, case-insensitively
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("invalid extractor status '%s'", name)
}

// restartable returns whether Start may begin a run from this status
func (s Status) restartable() bool {
	return s == StatusStarted || s == StatusStopped || s == StatusLoaded
}
