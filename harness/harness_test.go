package harness_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/simharness/bridge"
	"github.com/sarchlab/simharness/dut"
	"github.com/sarchlab/simharness/harness"
	"github.com/sarchlab/simharness/peekpoke"
	"github.com/sarchlab/simharness/tokenhash"
)

func counterLogic(cur, next *dut.Signals) {
	switch {
	case cur.Bool("reset"):
		next.SetUint("count", 0)
	case cur.Bool("en"):
		next.SetUint("count", cur.Uint("count")+1)
	}

	sum := cur.Big("wide_a")
	next.SetBig("wide_sum", sum.Add(sum, cur.Big("wide_b")))
}

type testbed struct {
	registry *bridge.Registry
	design   *dut.DUT
	bridge   *peekpoke.Bridge
	logs     *bytes.Buffer
	h        *harness.Harness
}

func newTestbed() *testbed {
	return newTestbedWith(harness.MakeBuilder())
}

func newTestbedWith(builder harness.Builder) *testbed {
	tb := &testbed{
		registry: bridge.NewRegistry(),
		logs:     new(bytes.Buffer),
	}

	tb.design = dut.MakeBuilder().
		WithEngine(sim.NewSerialEngine()).
		WithSignals(
			dut.SignalSpec{Name: "reset", Width: 1, Dir: dut.Input},
			dut.SignalSpec{Name: "x", Width: 32, Dir: dut.Input},
			dut.SignalSpec{Name: "en", Width: 1, Dir: dut.Input},
			dut.SignalSpec{Name: "count", Width: 16, Dir: dut.Register},
			dut.SignalSpec{Name: "wide_a", Width: 96, Dir: dut.Input},
			dut.SignalSpec{Name: "wide_b", Width: 96, Dir: dut.Input},
			dut.SignalSpec{Name: "wide_sum", Width: 97, Dir: dut.Output},
		).
		WithLogic(counterLogic).
		Build("Counter")

	tb.bridge = peekpoke.Builder{}.WithDesign(tb.design).Build("PeekPoke")
	tb.registry.AddBridge(tb.bridge)

	logger := slog.New(slog.NewTextHandler(tb.logs,
		&slog.HandlerOptions{Level: slog.LevelDebug}))

	h, err := builder.
		WithRegistry(tb.registry).
		WithTargetName("Counter").
		WithLogger(logger).
		Build()
	Expect(err).NotTo(HaveOccurred())

	tb.h = h

	return tb
}

var _ = Describe("Harness", func() {
	var (
		tb *testbed
		h  *harness.Harness
	)

	BeforeEach(func() {
		tb = newTestbed()
		h = tb.h
	})

	AfterEach(func() {
		tb.bridge.Finalize()
	})

	It("should start passing at cycle zero", func() {
		Expect(h.Pass()).To(BeTrue())
		Expect(h.Cycles()).To(BeZero())
		Expect(h.TargetName()).To(Equal("Counter"))
		Expect(h.RandomSeed()).To(Equal(harness.DefaultRandomSeed))
		Expect(h.Log()).To(BeTrue())

		_, failed := h.FailCycle()
		Expect(failed).To(BeFalse())
	})

	It("should make a poke visible after a zero-length blocking step", func() {
		h.Poke("x", 7, true)
		h.Step(0, true)

		Expect(h.Peek("x", true)).To(Equal(uint32(7)))
		Expect(h.Cycles()).To(BeZero())
	})

	It("should count blocking steps exactly", func() {
		h.Poke("en", 1, true)

		total := uint64(0)
		for _, n := range []uint32{1, 0, 7, 3, 0, 12} {
			h.Step(n, true)
			total += uint64(n)

			Expect(h.Cycles()).To(Equal(total))
			Expect(tb.bridge.HardwareCycle()).To(Equal(total))
		}

		Expect(h.Peek("count", true)).To(Equal(uint32(total)))
	})

	It("should keep the cycle count an upper bound with non-blocking steps", func() {
		for i := 0; i < 20; i++ {
			h.Step(uint32(i%4), i%3 == 0)
			Expect(h.Cycles()).To(BeNumerically(">=", tb.bridge.HardwareCycle()))
		}

		h.Step(0, true)
		Expect(tb.bridge.HardwareCycle()).To(Equal(h.Cycles()))
	})

	It("should not change the cycle count on zero-length steps", func() {
		h.Step(4, true)
		h.Step(0, false)
		h.Step(0, true)
		h.Step(0, false)

		Expect(h.Cycles()).To(Equal(uint64(4)))
	})

	It("should hold reset for the pulse length", func() {
		h.Poke("en", 1, true)
		h.Step(9, true)
		before := h.Cycles()

		h.TargetReset(harness.DefaultResetPulseLength)

		Expect(h.Cycles()).To(Equal(before + 5))
		Expect(h.Peek("reset", true)).To(BeZero())
		Expect(h.Peek("count", true)).To(BeZero())
	})

	It("should pass a matching expectation without side effects", func() {
		h.Poke("x", 5, true)

		Expect(h.Expect("x", 5)).To(BeTrue())
		Expect(h.Pass()).To(BeTrue())

		_, failed := h.FailCycle()
		Expect(failed).To(BeFalse())
	})

	It("should keep the cycle of the first failure", func() {
		h.Poke("x", 5, true)
		h.Step(10, true)

		Expect(h.Expect("x", 6)).To(BeFalse())
		Expect(h.Pass()).To(BeFalse())
		failT, failed := h.FailCycle()
		Expect(failed).To(BeTrue())
		Expect(failT).To(Equal(uint64(10)))

		Expect(h.ExpectTrue(h.Cycles() == 10, "at cycle ten")).To(BeTrue())
		Expect(h.Pass()).To(BeFalse())

		h.Step(10, true)
		Expect(h.ExpectTrue(h.Peek("x", true) == 9, "x is nine")).To(BeFalse())
		failT, _ = h.FailCycle()
		Expect(failT).To(Equal(uint64(10)))
		Expect(h.Cycles()).To(Equal(uint64(20)))
	})

	It("should compare wide values in full", func() {
		a, _ := new(big.Int).SetString("ffffffffffffffffffffffff", 16)
		b := big.NewInt(1)

		h.PokeWide("wide_a", a)
		h.PokeWide("wide_b", b)
		h.Step(1, true)

		expected := new(big.Int).Add(a, b)
		Expect(h.ExpectWide("wide_sum", expected)).To(BeTrue())

		out := new(big.Int)
		h.PeekWide("wide_a", out)
		Expect(out.Cmp(a)).To(BeZero())

		Expect(h.ExpectWide("wide_sum", a)).To(BeFalse())
		Expect(h.Pass()).To(BeFalse())
	})

	It("should log expectation outcomes only when enabled", func() {
		h.Poke("x", 1, true)

		h.Expect("x", 2)
		Expect(tb.logs.String()).To(ContainSubstring("EXPECT"))
		Expect(tb.logs.String()).To(ContainSubstring("Result=FAIL"))

		tb.logs.Reset()
		h.SetLog(false)
		h.Expect("x", 3)
		h.ExpectTrue(false, "quiet")
		Expect(tb.logs.String()).To(BeEmpty())
		Expect(h.Records()).To(HaveLen(3))
	})

	It("should sample a signal", func() {
		h.Poke("x", 99, true)
		Expect(h.SampleValue("x")).To(Equal(uint32(99)))
	})

	It("should return zero from teardown when nothing failed", func() {
		h.Expect("count", 0)

		code, err := h.Teardown()
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(BeZero())
		Expect(tb.registry.Finished()).To(BeTrue())
	})

	It("should return non-zero from teardown after a failure", func() {
		h.ExpectTrue(false, "broken")

		code, err := h.Teardown()
		Expect(err).NotTo(HaveOccurred())
		Expect(code).NotTo(BeZero())
		Expect(tb.logs.String()).To(ContainSubstring("*** FAILED ***"))
	})

	It("should tear down only once", func() {
		_, err := h.Teardown()
		Expect(err).NotTo(HaveOccurred())

		_, err = h.Teardown()
		Expect(errors.Is(err, harness.ErrTornDown)).To(BeTrue())

		_, err = h.SimulationRun(harness.TestFunc(func(*harness.Harness) {
			Fail("must not run")
		}))
		Expect(errors.Is(err, harness.ErrTornDown)).To(BeTrue())
	})

	It("should run the test once and tear down", func() {
		runs := 0

		code, err := h.SimulationRun(harness.TestFunc(func(h *harness.Harness) {
			runs++
			h.TargetReset(harness.DefaultResetPulseLength)
			h.Poke("en", 1, true)
			h.Step(3, true)
			h.Expect("count", 3)
		}))

		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(BeZero())
		Expect(runs).To(Equal(1))
		Expect(tb.registry.Finished()).To(BeTrue())
	})

	It("should keep running after a failed expectation", func() {
		reached := false

		code, err := h.SimulationRun(harness.TestFunc(func(h *harness.Harness) {
			h.Expect("count", 1)
			h.Step(2, true)
			reached = true
		}))

		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(1))
		Expect(reached).To(BeTrue())
	})

	It("should abort on a transport failure and still tear down", func() {
		code, err := h.SimulationRun(harness.TestFunc(func(h *harness.Harness) {
			h.Step(2, true)
			h.Peek("no_such_signal", true)
			Fail("must not continue after a transport failure")
		}))

		Expect(code).NotTo(BeZero())
		Expect(h.Pass()).To(BeTrue())
		Expect(errors.Is(err, dut.ErrUnknownSignal)).To(BeTrue())

		var te *harness.TransportError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Op).To(Equal("peek"))
		Expect(te.ID).To(Equal("no_such_signal"))
		Expect(tb.registry.Finished()).To(BeTrue())
	})

	It("should surface deferred transport failures at teardown", func() {
		code, err := h.SimulationRun(harness.TestFunc(func(h *harness.Harness) {
			h.Poke("count", 1, false)
		}))

		Expect(code).NotTo(BeZero())
		Expect(errors.Is(err, dut.ErrNotInput)).To(BeTrue())
	})

	It("should re-raise other panics after teardown", func() {
		Expect(func() {
			h.SimulationRun(harness.TestFunc(func(*harness.Harness) {
				panic("test bug")
			}))
		}).To(PanicWith("test bug"))

		Expect(tb.registry.Finished()).To(BeTrue())
	})

	It("should find bridges through the harness", func() {
		pp, err := harness.GetBridge[*peekpoke.Bridge](h)
		Expect(err).NotTo(HaveOccurred())
		Expect(pp).To(BeIdenticalTo(tb.bridge))

		Expect(harness.GetBridges[peekpoke.Transport](h)).To(HaveLen(1))
		Expect(h.Registry()).To(BeIdenticalTo(tb.registry))
	})

	It("should write a report", func() {
		h.Poke("x", 4, true)
		h.Expect("x", 4)
		h.ExpectTrue(false, "custom check")

		buf := new(bytes.Buffer)
		h.Report(buf)

		Expect(buf.String()).To(ContainSubstring("custom check"))
		Expect(buf.String()).To(ContainSubstring("0x4"))
		Expect(buf.String()).To(ContainSubstring("*** FAILED ***"))
	})
})

var _ = Describe("Harness random source", func() {
	draw := func(h *harness.Harness) []uint64 {
		values := make([]uint64, 16)
		for i := range values {
			values[i] = h.Random().Uint64()
		}

		return values
	}

	It("should produce the same sequence for the same seed", func() {
		a := newTestbed()
		b := newTestbed()
		defer a.bridge.Finalize()
		defer b.bridge.Finalize()

		Expect(draw(a.h)).To(Equal(draw(b.h)))
	})

	It("should produce another sequence for another seed", func() {
		a := newTestbed()
		b := newTestbedWith(harness.MakeBuilder().WithRandomSeed(42))
		defer a.bridge.Finalize()
		defer b.bridge.Finalize()

		Expect(b.h.RandomSeed()).To(Equal(uint64(42)))
		Expect(draw(a.h)).NotTo(Equal(draw(b.h)))
	})

	It("should give identical bridge traffic for identical seeded runs", func() {
		run := func(tb *testbed) []tokenhash.Digest {
			code, err := tb.h.SimulationRun(harness.TestFunc(func(h *harness.Harness) {
				h.TargetReset(harness.DefaultResetPulseLength)
				for i := 0; i < 8; i++ {
					h.Poke("x", h.Random().Uint32(), true)
					h.Step(1, true)
					h.Peek("x", true)
				}
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(BeZero())

			return tb.h.TokenHashers().Digests()
		}

		a := run(newTestbed())
		b := run(newTestbed())

		Expect(a).NotTo(BeEmpty())
		Expect(tokenhash.Diff(a, b)).To(BeEmpty())
	})
})
