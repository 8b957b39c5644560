package service

import "errors"

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindInvalidInput is a malformed or out-of-range client request.
	// No network calls were made.
	KindInvalidInput Kind = iota
	// KindUpstreamFailure is an unreachable upstream or a non-2xx response.
	KindUpstreamFailure
	// KindUpstreamDataInvalid is a structurally invalid upstream payload.
	KindUpstreamDataInvalid
	// KindPricingRejected is a recoverable pricing outcome: the venue does
	// not deliver to the user's location.
	KindPricingRejected
	// KindBusy is an admission wait cancelled before a permit freed.
	KindBusy
)

// Error is the dual-result failure value returned by the pricing pipeline.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failure(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from an error returned by the pipeline.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
