package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch means validation left no usable carparks; the run is
	// treated as a failure even when the sources answered.
	ErrEmptyBatch = errors.New("validated carpark batch is empty")

	// ErrNoSnapshot means there is no cached snapshot to fall back to.
	ErrNoSnapshot = errors.New("no snapshot available")
)

// FetchError wraps a failed source fetch. Permanent failures (the source
// says the document does not exist) are never retried; transient ones are
// retried until attempts run out.
type FetchError struct {
	Source    string
	Permanent bool
	Attempts  int
	Err       error
}

func (e *FetchError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("fetch %s: %s failure after %d attempt(s): %v", e.Source, kind, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsPermanentFetch reports whether err is a FetchError marked permanent.
func IsPermanentFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Permanent
}
