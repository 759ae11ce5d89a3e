package reconcile

import (
	"errors"
	"fmt"

	"github.com/roach88/quill/internal/settings"
)

// ErrSaveInFlight is returned when SaveAll is invoked while another
// batch is still running. The second invocation is rejected, never
// interleaved.
var ErrSaveInFlight = errors.New("batch save already in flight")

// ErrNoSaver is the cause when a dirty domain has no registered
// SaveFunc.
var ErrNoSaver = errors.New("no saver registered for domain")

// SaveError surfaces the failing domain alongside the underlying
// transport or server error. The batch stops at the first one.
type SaveError struct {
	Domain settings.Domain
	Err    error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Domain, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// FailedDomain extracts the failing domain from a batch save error.
// Uses errors.As to handle wrapped errors.
func FailedDomain(err error) (settings.Domain, bool) {
	var se *SaveError
	if errors.As(err, &se) {
		return se.Domain, true
	}
	return "", false
}
