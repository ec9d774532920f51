// Package peekpoke provides the value transport between a test and the design
// under test: pokes, peeks and cycle advancement on named signals.
package peekpoke

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrClosed is returned by any call made after the transport is finalized.
var ErrClosed = errors.New("transport is finalized")

// ErrNotInitialized is returned by calls made before the bridge is started.
var ErrNotInitialized = errors.New("transport is not initialized")

// ErrTooWide is returned when a 32-bit access targets a wider signal.
var ErrTooWide = errors.New("signal is wider than 32 bits")

// Transport performs reads and writes of named signals and advances the
// design clock.
//
// Every blocking call is a synchronization point: it is serviced only after
// all earlier non-blocking calls have taken effect. A non-blocking call that
// fails reports its error from the next blocking call or from Finalize.
type Transport interface {
	// Poke writes a value of up to 32 bits to an input signal.
	Poke(id string, value uint32, blocking bool) error

	// PokeWide writes an arbitrary-width value to an input signal. It is
	// always blocking.
	PokeWide(id string, value *big.Int) error

	// Peek reads a signal of up to 32 bits. A non-blocking peek returns the
	// latest committed value without waiting for pending calls.
	Peek(id string, blocking bool) (uint32, error)

	// PeekWide reads a signal of any width into out. It is always blocking.
	PeekWide(id string, out *big.Int) error

	// Sample reads a signal without any synchronization.
	Sample(id string) (uint32, error)

	// Step advances the design by n cycles. Step(0, true) only
	// synchronizes.
	Step(n uint32, blocking bool) error

	// IsPrecise reports whether no call is pending, so that a non-blocking
	// peek would observe the effect of every earlier call.
	IsPrecise() bool

	// Finalize drains pending calls and shuts the transport down.
	Finalize() error
}

// Design is what the transport drives.
type Design interface {
	Poke(name string, value *big.Int) error
	Peek(name string) (*big.Int, error)
	Width(name string) (int, error)
	Advance(n uint64) error
	Cycle() uint64
}

// TokenObserver receives every token that crosses the transport. Tokens are
// reported on the calling goroutine.
type TokenObserver interface {
	ObserveToken(stream string, value *big.Int)
}
