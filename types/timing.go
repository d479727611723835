package types

import (
	"strings"
	"time"
)

type Timing struct {
	Operation string
	Start     time.Time
	End       time.Time
}

// TryStart sets the start time if it has not already been set
func (t *Timing) TryStart(operation string) {
	if t.Start.IsZero() {
		t.Operation = operation
		t.Start = time.Now()
	}
}

func (t *Timing) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

type TimingCollection []Timing

func (c TimingCollection) String() string {
	var sb strings.Builder
	sb.WriteString("Timing:\n")
	// get max label length
	maxLabelLen := 0
	for _, t := range c {
		if len(t.Operation) > maxLabelLen {
			maxLabelLen = len(t.Operation)
		}
	}

	for _, t := range c {
		sb.WriteString(t.Operation)
		sb.WriteString(":")
		// pad label to max length
		for i := len(t.Operation); i < maxLabelLen; i++ {
			sb.WriteString(" ")
		}
		sb.WriteString(t.Duration().String())
		sb.WriteString("\n")
	}
	return sb.String()
}
