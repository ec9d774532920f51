// Command wideadd checks a registered 128-bit adder with random operands.
package main

import (
	_ "embed"
	"log/slog"
	"math/big"
	"os"

	"github.com/sarchlab/simharness/config"
	"github.com/sarchlab/simharness/dut"
	"github.com/sarchlab/simharness/harness"
	"github.com/sarchlab/simharness/util/valgen"
	"github.com/tebeka/atexit"
)

//go:embed wideadd.yaml
var wideAddTarget []byte

const operandWidth = 128

func wideAddLogic(cur, next *dut.Signals) {
	if cur.Bool("reset") {
		next.SetUint("sum", 0)
		return
	}

	sum := cur.Big("a")
	next.SetBig("sum", sum.Add(sum, cur.Big("b")))
}

type wideAddTest struct {
	trials int
}

func (t wideAddTest) RunTest(h *harness.Harness) {
	h.TargetReset(harness.DefaultResetPulseLength)
	h.Expect("reset", 0)

	operand := valgen.MakeRandomWideGen(h.Random(), operandWidth)

	for i := 0; i < t.trials; i++ {
		a, b := operand(), operand()

		h.PokeWide("a", a)
		h.PokeWide("b", b)
		h.Step(1, true)

		h.ExpectWide("sum", new(big.Int).Add(a, b))
	}
}

func run() int {
	cfg, err := config.Parse(wideAddTarget)
	if err != nil {
		slog.Error("invalid target", "Error", err)
		return 1
	}

	p, err := config.PlatformBuilder{}.
		WithTarget(cfg).
		WithLogic(wideAddLogic).
		Build()
	if err != nil {
		slog.Error("cannot build platform", "Error", err)
		return 1
	}

	code, err := p.Harness.SimulationRun(wideAddTest{trials: 64})
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
