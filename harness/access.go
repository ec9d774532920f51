package harness

import (
	"fmt"
	"math/big"
)

// Step advances the design by n cycles. A blocking step returns once the
// cycles have run; a non-blocking one may return earlier. Either way the
// cycle count grows by n immediately. A blocking zero-length step
// synchronizes with the transport without advancing.
func (h *Harness) Step(n uint32, blocking bool) {
	if n == 0 && !blocking {
		return
	}

	mustTransport("step", "", h.peekPoke.Step(n, blocking))
	h.t += uint64(n)
}

// TargetReset holds the reset input high for pulseLength cycles and
// releases it.
func (h *Harness) TargetReset(pulseLength uint32) {
	h.Poke(h.resetSignal, 1, true)
	h.Step(pulseLength, true)
	h.Poke(h.resetSignal, 0, true)
}

// Poke writes a value of up to 32 bits to an input.
func (h *Harness) Poke(id string, value uint32, blocking bool) {
	if h.log {
		h.logger.Debug("POKE",
			"Signal", id,
			"Value", fmt.Sprintf("0x%x", value),
			"Cycle", h.t,
		)
	}

	mustTransport("poke", id, h.peekPoke.Poke(id, value, blocking))
}

// PokeWide writes an arbitrary-width value to an input.
func (h *Harness) PokeWide(id string, value *big.Int) {
	if h.log {
		h.logger.Debug("POKE",
			"Signal", id,
			"Value", "0x"+value.Text(16),
			"Cycle", h.t,
		)
	}

	mustTransport("poke", id, h.peekPoke.PokeWide(id, value))
}

// Peek reads a signal of up to 32 bits. A blocking peek observes every
// earlier poke and step.
func (h *Harness) Peek(id string, blocking bool) uint32 {
	if !blocking && h.log && !h.peekPoke.IsPrecise() {
		h.logger.Warn("PEEK is not precise", "Signal", id, "Cycle", h.t)
	}

	value, err := h.peekPoke.Peek(id, blocking)
	mustTransport("peek", id, err)

	if h.log {
		h.logger.Debug("PEEK",
			"Signal", id,
			"Value", fmt.Sprintf("0x%x", value),
			"Cycle", h.t,
		)
	}

	return value
}

// PeekWide reads a signal of any width into out.
func (h *Harness) PeekWide(id string, out *big.Int) {
	mustTransport("peek", id, h.peekPoke.PeekWide(id, out))

	if h.log {
		h.logger.Debug("PEEK",
			"Signal", id,
			"Value", "0x"+out.Text(16),
			"Cycle", h.t,
		)
	}
}

// SampleValue reads a signal without synchronizing with the transport. It
// is meant for monitoring, not for checking.
func (h *Harness) SampleValue(id string) uint32 {
	value, err := h.peekPoke.Sample(id)
	mustTransport("sample", id, err)

	return value
}
