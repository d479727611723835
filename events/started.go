package events

type Started struct {
	Base
	ExecutionId string
	Extractor   string
}

func NewStartedEvent(executionId, extractor string) *Started {
	return &Started{
		ExecutionId: executionId,
		Extractor:   extractor,
	}
}
