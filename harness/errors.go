package harness

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTornDown is returned when a harness is run or torn down after teardown.
var ErrTornDown = errors.New("harness is torn down")

// ErrRunning is returned when SimulationRun is called while a test is
// running.
var ErrRunning = errors.New("harness is already running a test")

// TransportError reports a failure of the peek-poke transport. The harness
// aborts the running test by panicking with a *TransportError, which
// SimulationRun recovers and returns after teardown.
type TransportError struct {
	Op  string
	ID  string
	Err error
}

func (e *TransportError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("transport %s %s: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

func mustTransport(op, id string, err error) {
	if err != nil {
		panic(&TransportError{Op: op, ID: id, Err: err})
	}
}
