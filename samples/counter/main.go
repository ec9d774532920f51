// Command counter runs a free-running counter with pipelined, non-blocking
// steps and checks the count after each synchronization point.
package main

import (
	_ "embed"
	"log/slog"
	"os"

	"github.com/sarchlab/simharness/config"
	"github.com/sarchlab/simharness/dut"
	"github.com/sarchlab/simharness/harness"
	"github.com/sarchlab/simharness/util/valgen"
	"github.com/tebeka/atexit"
)

//go:embed counter.yaml
var counterTarget []byte

func counterLogic(cur, next *dut.Signals) {
	switch {
	case cur.Bool("reset"):
		next.SetUint("count", 0)
	case cur.Bool("en"):
		next.SetUint("count", cur.Uint("count")+cur.Uint("step"))
	}
}

type counterTest struct {
	bursts int
}

func (t counterTest) RunTest(h *harness.Harness) {
	h.TargetReset(harness.DefaultResetPulseLength)

	increment := valgen.MakeIncreasingGen(0)
	burst := valgen.MakeRandomGen(h.Random(), 6)
	expected := uint32(0)

	for i := 0; i < t.bursts; i++ {
		step := increment() % 16
		cycles := burst()

		h.Poke("step", step, false)
		h.Poke("en", 1, false)
		h.Step(cycles, false)
		h.Poke("en", 0, false)

		slog.Debug("burst issued",
			"Count", h.SampleValue("count"),
			"Cycle", h.Cycles(),
		)

		expected += step * cycles

		h.Step(0, true)
		h.Expect("count", expected)
	}
}

func run() int {
	cfg, err := config.Parse(counterTarget)
	if err != nil {
		slog.Error("invalid target", "Error", err)
		return 1
	}

	p, err := config.PlatformBuilder{}.
		WithTarget(cfg).
		WithLogic(counterLogic).
		Build()
	if err != nil {
		slog.Error("cannot build platform", "Error", err)
		return 1
	}

	code, err := p.Harness.SimulationRun(counterTest{bursts: 32})
	if err != nil {
		slog.Error("simulation failed", "Error", err)
	}

	p.DUT.Dump(os.Stdout)
	p.Harness.Report(os.Stdout)

	return code
}

func main() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	atexit.Exit(run())
}
