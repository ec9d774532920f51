package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
)

// Record is the outcome of one expectation.
type Record struct {
	Cycle    uint64
	Check    string
	Expected string
	Actual   string
	Pass     bool
}

func outcome(pass bool) string {
	if pass {
		return "PASS"
	}

	return "FAIL"
}

// Expect peeks a signal and checks it against the expected value.
func (h *Harness) Expect(id string, expected uint32) bool {
	value := h.Peek(id, true)

	return h.expectValue(id,
		fmt.Sprintf("0x%x", value),
		fmt.Sprintf("0x%x", expected),
		value == expected)
}

// ExpectWide peeks a signal of any width and checks it against the expected
// value.
func (h *Harness) ExpectWide(id string, expected *big.Int) bool {
	value := new(big.Int)
	h.PeekWide(id, value)

	return h.expectValue(id,
		"0x"+value.Text(16),
		"0x"+expected.Text(16),
		value.Cmp(expected) == 0)
}

func (h *Harness) expectValue(id, actual, expected string, pass bool) bool {
	if h.log {
		h.logger.Log(context.Background(), levelOf(pass), "EXPECT",
			"Signal", id,
			"Value", actual,
			"Expected", expected,
			"Result", outcome(pass),
			"Cycle", h.t,
		)
	}

	h.records = append(h.records, Record{
		Cycle:    h.t,
		Check:    id,
		Expected: expected,
		Actual:   actual,
		Pass:     pass,
	})

	return h.check(pass)
}

// ExpectTrue records a condition. The first failure fixes the failure
// cycle; later failures only log. The test keeps running either way.
func (h *Harness) ExpectTrue(pass bool, message string) bool {
	if h.log && message != "" {
		h.logger.Log(context.Background(), levelOf(pass), message,
			"Result", outcome(pass),
			"Cycle", h.t,
		)
	}

	h.records = append(h.records, Record{
		Cycle: h.t,
		Check: message,
		Pass:  pass,
	})

	return h.check(pass)
}

func (h *Harness) check(pass bool) bool {
	if h.pass && !pass {
		h.failT = h.t
	}

	h.pass = h.pass && pass

	return pass
}

// Records returns the outcome of every expectation in issue order.
func (h *Harness) Records() []Record {
	return append([]Record(nil), h.records...)
}

func levelOf(pass bool) slog.Level {
	if pass {
		return slog.LevelInfo
	}

	return slog.LevelError
}
