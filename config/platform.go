package config

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/simharness/bridge"
	"github.com/sarchlab/simharness/dut"
	"github.com/sarchlab/simharness/harness"
	"github.com/sarchlab/simharness/peekpoke"
)

// Platform is a fully wired simulation of one target.
type Platform struct {
	Engine   sim.Engine
	DUT      *dut.DUT
	PeekPoke *peekpoke.Bridge
	Registry *bridge.Registry
	Harness  *harness.Harness
}

// PlatformBuilder assembles a platform from a target description.
type PlatformBuilder struct {
	target  *TargetConfig
	logic   dut.Logic
	logger  *slog.Logger
	bridges []bridge.Bridge
}

// WithTarget sets the target description.
func (b PlatformBuilder) WithTarget(target *TargetConfig) PlatformBuilder {
	b.target = target
	return b
}

// WithLogic sets the next-state function of the design.
func (b PlatformBuilder) WithLogic(logic dut.Logic) PlatformBuilder {
	b.logic = logic
	return b
}

// WithLogger sets the logger of the harness.
func (b PlatformBuilder) WithLogger(logger *slog.Logger) PlatformBuilder {
	b.logger = logger
	return b
}

// WithBridges registers additional bridges after the peek-poke bridge.
func (b PlatformBuilder) WithBridges(bridges ...bridge.Bridge) PlatformBuilder {
	b.bridges = append(append([]bridge.Bridge(nil), b.bridges...), bridges...)
	return b
}

// Build creates the engine, the design, the peek-poke bridge, the registry
// and the harness.
func (b PlatformBuilder) Build() (*Platform, error) {
	if b.target == nil {
		panic("target is not set")
	}

	if b.logic == nil {
		panic("logic is not set")
	}

	specs, err := b.target.SignalSpecs()
	if err != nil {
		return nil, err
	}

	freqMHz := b.target.FreqMHz
	if freqMHz == 0 {
		freqMHz = DefaultFreqMHz
	}

	resetSignal := b.target.ResetSignal
	if resetSignal == "" {
		resetSignal = harness.DefaultResetSignal
	}

	engine := sim.NewSerialEngine()

	design := dut.MakeBuilder().
		WithEngine(engine).
		WithFreq(sim.Freq(freqMHz) * sim.MHz).
		WithSignals(specs...).
		WithLogic(b.logic).
		WithTracing(b.target.Trace).
		Build(b.target.Target)

	pp := peekpoke.Builder{}.
		WithDesign(design).
		WithTracing(b.target.Trace).
		Build(b.target.Target + ".PeekPoke")

	registry := bridge.NewRegistry()
	registry.AddBridge(pp)

	for _, extra := range b.bridges {
		registry.AddBridge(extra)
	}

	log := true
	if b.target.Log != nil {
		log = *b.target.Log
	}

	h, err := harness.MakeBuilder().
		WithRegistry(registry).
		WithTargetName(b.target.Target).
		WithResetSignal(resetSignal).
		WithRandomSeed(b.target.Seed).
		WithLog(log).
		WithLogger(b.logger).
		Build()
	if err != nil {
		registry.FinishAll()
		return nil, errors.Wrapf(err, "build platform %s", b.target.Target)
	}

	return &Platform{
		Engine:   engine,
		DUT:      design,
		PeekPoke: pp,
		Registry: registry,
		Harness:  h,
	}, nil
}
