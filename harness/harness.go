// Package harness drives a design under simulation through a peek-poke
// bridge. A test advances cycles, pokes and peeks named signals and records
// expectations; the harness keeps the cycle count and the first failure and
// turns the run into a single pass/fail verdict.
//
// A test runs exactly once through SimulationRun, which always tears the
// harness down afterwards:
//
//	h, err := harness.MakeBuilder().
//		WithRegistry(registry).
//		WithTargetName("GCD").
//		Build()
//	...
//	code, err := h.SimulationRun(harness.TestFunc(func(h *harness.Harness) {
//		h.TargetReset(harness.DefaultResetPulseLength)
//		h.Poke("a", 12, true)
//		h.Step(10, true)
//		h.Expect("out", 4)
//	}))
package harness

import (
	"log/slog"
	"math/rand"

	"github.com/sarchlab/simharness/bridge"
	"github.com/sarchlab/simharness/peekpoke"
	"github.com/sarchlab/simharness/tokenhash"
)

// DefaultRandomSeed seeds the harness random source unless another seed is
// configured.
const DefaultRandomSeed uint64 = 0

// DefaultResetPulseLength is the number of cycles reset is held by
// TargetReset in the samples.
const DefaultResetPulseLength uint32 = 5

// DefaultResetSignal is the input asserted by TargetReset.
const DefaultResetSignal = "reset"

// A Test is the stimulus and checking logic of one run.
type Test interface {
	RunTest(h *Harness)
}

// TestFunc adapts a function to the Test interface.
type TestFunc func(h *Harness)

// RunTest calls f(h).
func (f TestFunc) RunTest(h *Harness) {
	f(h)
}

type lifecycleState int

const (
	stateConstructed lifecycleState = iota
	stateRunning
	stateTornDown
)

func (s lifecycleState) Name() string {
	switch s {
	case stateConstructed:
		return "Constructed"
	case stateRunning:
		return "Running"
	case stateTornDown:
		return "TornDown"
	default:
		panic("invalid lifecycle state")
	}
}

// Harness is the state machine of one test run.
type Harness struct {
	registry    *bridge.Registry
	peekPoke    peekpoke.Transport
	targetName  string
	resetSignal string
	logger      *slog.Logger

	randomSeed   uint64
	random       *rand.Rand
	tokenHashers *tokenhash.Hashers

	pass bool
	log  bool

	t     uint64
	failT uint64

	records []Record
	state   lifecycleState
}

// TargetName returns the name of the design under test.
func (h *Harness) TargetName() string {
	return h.targetName
}

// Cycles returns the number of cycles requested so far. With blocking steps
// only, it equals the cycle the design has reached; otherwise it is an upper
// bound.
func (h *Harness) Cycles() uint64 {
	return h.t
}

// Pass reports whether every expectation so far has held.
func (h *Harness) Pass() bool {
	return h.pass
}

// FailCycle returns the cycle of the first failed expectation. The second
// result is false while no expectation has failed.
func (h *Harness) FailCycle() (uint64, bool) {
	return h.failT, !h.pass
}

// Log reports whether expectation outcomes are logged.
func (h *Harness) Log() bool {
	return h.log
}

// SetLog turns the logging of expectation outcomes on or off.
func (h *Harness) SetLog(log bool) {
	h.log = log
}

// RandomSeed returns the seed of the random source.
func (h *Harness) RandomSeed() uint64 {
	return h.randomSeed
}

// Random returns the random source of the run. Two harnesses built with the
// same seed produce the same sequence.
func (h *Harness) Random() *rand.Rand {
	return h.random
}

// TokenHashers returns the digests of the traffic through the peek-poke
// bridge.
func (h *Harness) TokenHashers() *tokenhash.Hashers {
	return h.tokenHashers
}

// Registry returns the bridge registry the harness was built with.
func (h *Harness) Registry() *bridge.Registry {
	return h.registry
}

// GetBridges returns every bridge of the harness registry that implements T.
func GetBridges[T any](h *Harness) []T {
	return bridge.GetBridges[T](h.registry)
}

// GetBridge returns the only bridge of the harness registry that
// implements T.
func GetBridge[T any](h *Harness) (T, error) {
	return bridge.GetBridge[T](h.registry)
}
