package events

type StatusChanged struct {
	Base
	Extractor string
	From      string
	To        string
}

func NewStatusChangedEvent(extractor, from, to string) *StatusChanged {
	return &StatusChanged{
		Extractor: extractor,
		From:      from,
		To:        to,
	}
}
