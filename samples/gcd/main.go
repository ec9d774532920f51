// Command gcd checks a subtraction-based GCD unit against random operands.
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

//go:embed gcd.yaml
var gcdTarget []byte

const (
	numTrials     = 16
	maxWaitCycles = 1 << 12
)

func gcdLogic(cur, next *dut.Signals) {
	x, y := cur.Uint("x"), cur.Uint("y")

	switch {
	case cur.Bool("reset"):
		x, y = 0, 0
	case cur.Bool("e"):
		x, y = cur.Uint("a"), cur.Uint("b")
	case y == 0:
	case x > y:
		x -= y
	default:
		y -= x
	}

	next.SetUint("x", x)
	next.SetUint("y", y)
	next.SetUint("z", x)
	next.SetBool("v", y == 0)
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

type gcdTest struct{}

func (gcdTest) RunTest(h *harness.Harness) {
	h.TargetReset(harness.DefaultResetPulseLength)

	operand := valgen.MakeRandomGen(h.Random(), 8)

	for i := 0; i < numTrials; i++ {
		a, b := operand()+1, operand()+1

		h.Poke("a", a, true)
		h.Poke("b", b, true)
		h.Poke("e", 1, true)
		h.Step(1, true)
		h.Poke("e", 0, true)

		waited := 0
		for h.Peek("v", true) == 0 && waited < maxWaitCycles {
			h.Step(1, true)
			waited++
		}

		h.ExpectTrue(waited < maxWaitCycles, "GCD converges")
		h.Expect("z", gcd(a, b))
	}
}

func run() int {
	cfg, err := config.Parse(gcdTarget)
	if err != nil {
		slog.Error("invalid target", "Error", err)
		return 1
	}

	p, err := config.PlatformBuilder{}.
		WithTarget(cfg).
		WithLogic(gcdLogic).
		Build()
	if err != nil {
		slog.Error("cannot build platform", "Error", err)
		return 1
	}

	code, err := p.Harness.SimulationRun(gcdTest{})
	if err != nil {
		slog.Error("simulation failed", "Error", err)
	}

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
