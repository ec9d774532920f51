package dut

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new DUT models.
type Builder struct {
	engine  sim.Engine
	freq    sim.Freq
	signals []SignalSpec
	logic   Logic
	tracing bool
}

// MakeBuilder returns a builder with a 1 GHz clock and logic that holds
// every signal.
func MakeBuilder() Builder {
	return Builder{
		freq:  1 * sim.GHz,
		logic: func(cur, next *Signals) {},
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock frequency of the design.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithSignals appends signal declarations.
func (b Builder) WithSignals(signals ...SignalSpec) Builder {
	b.signals = append(append([]SignalSpec(nil), b.signals...), signals...)
	return b
}

// WithLogic sets the next-state function.
func (b Builder) WithLogic(logic Logic) Builder {
	b.logic = logic
	return b
}

// WithTracing enables a trace record for every cycle.
func (b Builder) WithTracing(tracing bool) Builder {
	b.tracing = tracing
	return b
}

// Build creates a DUT.
func (b Builder) Build(name string) *DUT {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.logic == nil {
		panic("logic is not set")
	}

	state, err := newSignals(b.signals)
	if err != nil {
		panic(err)
	}

	d := &DUT{
		state:   state,
		logic:   b.logic,
		tracing: b.tracing,
	}

	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)

	return d
}
