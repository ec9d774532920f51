// Package dut models a design under test as a ticking component of the Akita
// engine. Each tick evaluates the design logic once and commits the result.
package dut

import (
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/simharness/util/trace"
)

// Logic computes the next state of the design from the current one. It may
// write any non-input signal of next. Writes to inputs are discarded.
type Logic func(cur, next *Signals)

// DUT is a cycle-level model of a design under test.
type DUT struct {
	*sim.TickingComponent

	lock    sync.RWMutex
	state   *Signals
	logic   Logic
	tracing bool

	cycle     uint64
	remaining uint64
}

// Tick evaluates one cycle of the design.
func (d *DUT) Tick() (madeProgress bool) {
	if d.remaining == 0 {
		return false
	}

	d.lock.Lock()
	next := d.state.clone()
	d.logic(d.state, next)
	d.state.commit(next)
	d.cycle++
	d.remaining--
	cycle := d.cycle
	d.lock.Unlock()

	if d.tracing {
		trace.Trace("DUT",
			"Behavior", "Tick",
			"Component", d.Name(),
			"Cycle", cycle,
			"Time", float64(d.Engine.CurrentTime()*1e9),
		)
	}

	return d.remaining > 0
}

// Advance runs the engine until the design has executed n more cycles.
func (d *DUT) Advance(n uint64) error {
	if n == 0 {
		return nil
	}

	d.remaining += n
	d.TickLater()

	err := d.Engine.Run()
	if err != nil {
		return errors.Wrapf(err, "%s: advance %d cycles", d.Name(), n)
	}

	if d.remaining != 0 {
		return errors.Errorf("%s: engine stopped with %d cycles left",
			d.Name(), d.remaining)
	}

	return nil
}

// Cycle returns the number of cycles the design has executed.
func (d *DUT) Cycle() uint64 {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return d.cycle
}

// Poke drives an input signal. The value is truncated to the signal width.
func (d *DUT) Poke(name string, value *big.Int) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	v, err := d.state.lookup(name)
	if err != nil {
		return err
	}

	if spec, _ := d.state.Spec(name); spec.Dir != Input {
		return errors.Wrap(ErrNotInput, name)
	}

	v.And(value, d.state.masks[name])

	return nil
}

// Peek returns a copy of the current value of a signal.
func (d *DUT) Peek(name string) (*big.Int, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	v, err := d.state.lookup(name)
	if err != nil {
		return nil, err
	}

	return new(big.Int).Set(v), nil
}

// Width returns the declared width of a signal.
func (d *DUT) Width(name string) (int, error) {
	spec, ok := d.state.Spec(name)
	if !ok {
		return 0, errors.Wrap(ErrUnknownSignal, name)
	}

	return spec.Width, nil
}

// Dump writes the signal table of the design.
func (d *DUT) Dump(w io.Writer) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s @ cycle %d", d.Name(), d.cycle))
	t.AppendHeader(table.Row{"Signal", "Dir", "Width", "Value"})

	for _, name := range d.state.order {
		spec := d.state.specs[name]
		t.AppendRow(table.Row{
			name,
			spec.Dir.Name(),
			spec.Width,
			"0x" + d.state.values[name].Text(16),
		})
	}

	t.Render()
}
