package http1

// targetState tracks the request target explicitly instead of inferring it from
// the buffer contents.
type targetState uint8

const (
	eTargetNotStarted targetState = iota + 1
	eTargetInProgress
	eTargetComplete
)
