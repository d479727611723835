package events

type Event interface {
	IsEvent()
}

type Base struct {
}

func (b *Base) IsEvent() {}
