// Package bridge defines the pluggable adapters that connect a test to the
// simulated design and the registry that holds them.
package bridge

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoBridge is returned when a single-bridge lookup finds no match.
var ErrNoBridge = errors.New("no bridge of the requested type")

// ErrMultipleBridges is returned when a single-bridge lookup finds more than
// one match.
var ErrMultipleBridges = errors.New("multiple bridges of the requested type")

// A Bridge provides one I/O capability to the simulation.
type Bridge interface {
	// Name returns the instance name of the bridge.
	Name() string

	// Init is called once before the test starts.
	Init() error

	// Finish is called once when the test is torn down.
	Finish() error
}

// Registry holds bridges in registration order.
type Registry struct {
	bridges     []Bridge
	initialized bool
	finished    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddBridge registers a bridge.
func (r *Registry) AddBridge(b Bridge) {
	if r.finished {
		panic(fmt.Sprintf("adding bridge %s to a finished registry", b.Name()))
	}

	r.bridges = append(r.bridges, b)
}

// Bridges returns all registered bridges.
func (r *Registry) Bridges() []Bridge {
	return append([]Bridge(nil), r.bridges...)
}

// InitAll initializes every bridge once, in registration order. It stops at
// the first failure.
func (r *Registry) InitAll() error {
	if r.initialized {
		return nil
	}

	r.initialized = true

	for _, b := range r.bridges {
		if err := b.Init(); err != nil {
			return errors.Wrapf(err, "init bridge %s", b.Name())
		}
	}

	return nil
}

// FinishAll finishes every bridge once. Every bridge is finished even if an
// earlier one fails; the errors are joined.
func (r *Registry) FinishAll() error {
	if r.finished {
		return nil
	}

	r.finished = true

	var errs []error
	for _, b := range r.bridges {
		if err := b.Finish(); err != nil {
			errs = append(errs, errors.Wrapf(err, "finish bridge %s", b.Name()))
		}
	}

	return stderrors.Join(errs...)
}

// Finished reports whether FinishAll has run.
func (r *Registry) Finished() bool {
	return r.finished
}

// GetBridges returns every registered bridge that implements T.
func GetBridges[T any](r *Registry) []T {
	var matches []T

	for _, b := range r.bridges {
		if t, ok := b.(T); ok {
			matches = append(matches, t)
		}
	}

	return matches
}

// GetBridge returns the only registered bridge that implements T.
func GetBridge[T any](r *Registry) (T, error) {
	var zero T

	matches := GetBridges[T](r)
	switch len(matches) {
	case 0:
		return zero, errors.Wrapf(ErrNoBridge, "%T", &zero)
	case 1:
		return matches[0], nil
	default:
		return zero, errors.Wrapf(ErrMultipleBridges,
			"%T: %d found", &zero, len(matches))
	}
}
