package events

import "github.com/turbot/tailpipe-extractor/types"

type Completed struct {
	Base
	ExecutionId string
	Extractor   string
	// LastExecution is only set if the run stored data
	LastExecution string
	Timing        types.TimingCollection
	Err           error
}

func NewCompletedEvent(executionId, extractor, lastExecution string, timing types.TimingCollection, err error) *Completed {
	return &Completed{
		ExecutionId:   executionId,
		Extractor:     extractor,
		LastExecution: lastExecution,
		Timing:        timing,
		Err:           err,
	}
}
