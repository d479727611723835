package events

type Error struct {
	Base
	ExecutionId string
	Err         error
}

func NewErrorEvent(executionId string, err error) *Error {
	return &Error{
		ExecutionId: executionId,
		Err:         err,
	}
}
