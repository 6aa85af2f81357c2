package bridge

import "fmt"

// ErrMalformedMessage represents a request or reply buffer whose length does
// not match the photon count announced in its own header.
type ErrMalformedMessage struct {
	Length   int
	Expected int
}

func (e *ErrMalformedMessage) Error() string {
	return fmt.Sprintf("malformed message: %d bytes, expected %d from header", e.Length, e.Expected)
}

// ErrEngineFailure represents a simulation engine call that returned an
// error or produced no event at all. An event with zero hits is not an
// engine failure.
type ErrEngineFailure struct {
	EventID uint32
	Err     error
}

func (e *ErrEngineFailure) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("engine produced no event for event %d", e.EventID)
	}
	return fmt.Sprintf("engine failed on event %d: %v", e.EventID, e.Err)
}

func (e *ErrEngineFailure) Unwrap() error { return e.Err }

// ErrEncodingOverflow represents an aggregated photon count that cannot be
// written into the uint32 header word.
type ErrEncodingOverflow struct {
	Count int
}

func (e *ErrEncodingOverflow) Error() string {
	return fmt.Sprintf("photon count %d overflows the reply header", e.Count)
}

// ErrInconsistentHits represents an engine hit batch whose attribute slices
// disagree in length.
type ErrInconsistentHits struct {
	Channel uint32
	Err     error
}

func (e *ErrInconsistentHits) Error() string {
	return fmt.Sprintf("inconsistent hits on channel %d: %v", e.Channel, e.Err)
}

func (e *ErrInconsistentHits) Unwrap() error { return e.Err }

// ErrRemote represents an error reply frame received from the server.
type ErrRemote struct {
	EventID uint32
}

func (e *ErrRemote) Error() string {
	return fmt.Sprintf("server reported an error for event %d", e.EventID)
}
