package peekpoke

import (
	stderrors "errors"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sarchlab/simharness/util/trace"
)

// Bridge is a pipelined transport. Commands are serviced in issue order by a
// single worker goroutine, which is the only code that advances the design.
type Bridge struct {
	name     string
	design   Design
	observer TokenObserver
	tracing  bool

	queue   *commandQueue
	pending atomic.Int64
	started bool
	closed  bool
	stopped chan struct{}

	errLock sync.Mutex
	latched error

	finalizeOnce sync.Once
	finalizeErr  error
}

// Name returns the name of the bridge.
func (b *Bridge) Name() string {
	return b.name
}

// SetTokenObserver sets the receiver of the tokens crossing the bridge.
func (b *Bridge) SetTokenObserver(o TokenObserver) {
	b.observer = o
}

// Init starts the worker.
func (b *Bridge) Init() error {
	if b.closed {
		return ErrClosed
	}

	if b.started {
		return nil
	}

	b.started = true
	go b.serve()

	return nil
}

// Finish finalizes the transport.
func (b *Bridge) Finish() error {
	return b.Finalize()
}

// HardwareCycle returns the number of cycles the design has executed so far.
// It never exceeds the number of cycles requested through Step.
func (b *Bridge) HardwareCycle() uint64 {
	return b.design.Cycle()
}

// IsPrecise reports whether no command is pending.
func (b *Bridge) IsPrecise() bool {
	return b.pending.Load() == 0
}

// Poke writes a value to an input signal.
func (b *Bridge) Poke(id string, value uint32, blocking bool) error {
	v := new(big.Int).SetUint64(uint64(value))
	b.observe("poke."+id, v)

	_, err := b.submit(&command{kind: cmdPoke, name: id, value: v}, blocking)

	return err
}

// PokeWide writes an arbitrary-width value to an input signal.
func (b *Bridge) PokeWide(id string, value *big.Int) error {
	v := new(big.Int).Set(value)
	b.observe("poke."+id, v)

	_, err := b.submit(&command{kind: cmdPoke, name: id, value: v}, true)

	return err
}

// Peek reads a signal of up to 32 bits.
func (b *Bridge) Peek(id string, blocking bool) (uint32, error) {
	if !blocking {
		v, err := b.readNow(id)
		if err != nil {
			return 0, err
		}

		b.observe("peek."+id, v)

		return uint32(v.Uint64()), nil
	}

	if err := b.mustBeNarrow(id); err != nil {
		return 0, err
	}

	v, err := b.submit(&command{kind: cmdPeek, name: id}, true)
	if v == nil {
		return 0, err
	}

	b.observe("peek."+id, v)

	return uint32(v.Uint64()), err
}

// PeekWide reads a signal of any width into out.
func (b *Bridge) PeekWide(id string, out *big.Int) error {
	v, err := b.submit(&command{kind: cmdPeek, name: id}, true)
	if v == nil {
		return err
	}

	b.observe("peek."+id, v)
	out.Set(v)

	return err
}

// Sample reads a signal without synchronization.
func (b *Bridge) Sample(id string) (uint32, error) {
	v, err := b.readNow(id)
	if err != nil {
		return 0, err
	}

	return uint32(v.Uint64()), nil
}

// Step advances the design by n cycles.
func (b *Bridge) Step(n uint32, blocking bool) error {
	if n == 0 {
		if !blocking {
			return nil
		}

		_, err := b.submit(&command{kind: cmdSync}, true)

		return err
	}

	_, err := b.submit(&command{kind: cmdStep, n: uint64(n)}, blocking)

	return err
}

// Finalize drains the pending commands, stops the worker and returns any
// error latched by a non-blocking command.
func (b *Bridge) Finalize() error {
	b.finalizeOnce.Do(func() {
		b.closed = true

		if !b.started {
			return
		}

		b.queue.close()
		<-b.stopped

		b.finalizeErr = b.takeLatched()

		if b.tracing {
			trace.Trace("PeekPoke",
				"Behavior", "Finalize",
				"Bridge", b.name,
				"Cycle", b.design.Cycle(),
			)
		}
	})

	return b.finalizeErr
}

func (b *Bridge) ready() error {
	if b.closed {
		return ErrClosed
	}

	if !b.started {
		return ErrNotInitialized
	}

	return nil
}

func (b *Bridge) mustBeNarrow(id string) error {
	width, err := b.design.Width(id)
	if err != nil {
		return err
	}

	if width > 32 {
		return errors.Wrapf(ErrTooWide, "%s has %d bits", id, width)
	}

	return nil
}

func (b *Bridge) readNow(id string) (*big.Int, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}

	if err := b.mustBeNarrow(id); err != nil {
		return nil, err
	}

	return b.design.Peek(id)
}

func (b *Bridge) observe(stream string, v *big.Int) {
	if b.observer != nil {
		b.observer.ObserveToken(stream, v)
	}
}

// submit enqueues a command. A blocking submit waits until the worker has
// serviced it and every command before it.
func (b *Bridge) submit(cmd *command, blocking bool) (*big.Int, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}

	if blocking {
		cmd.done = make(chan result, 1)
	}

	b.pending.Add(1)
	if !b.queue.push(cmd) {
		b.pending.Add(-1)
		return nil, ErrClosed
	}

	if !blocking {
		return nil, nil
	}

	res := <-cmd.done

	if latched := b.takeLatched(); latched != nil {
		return res.value, stderrors.Join(latched, res.err)
	}

	return res.value, res.err
}

func (b *Bridge) serve() {
	defer close(b.stopped)

	for {
		cmd, ok := b.queue.pop()
		if !ok {
			return
		}

		res := b.execute(cmd)
		b.pending.Add(-1)

		if cmd.done != nil {
			cmd.done <- res
			continue
		}

		if res.err != nil {
			b.latch(res.err)
		}
	}
}

func (b *Bridge) execute(cmd *command) result {
	var res result

	switch cmd.kind {
	case cmdPoke:
		res.err = b.design.Poke(cmd.name, cmd.value)
	case cmdPeek:
		res.value, res.err = b.design.Peek(cmd.name)
	case cmdStep:
		res.err = b.design.Advance(cmd.n)
	case cmdSync:
	}

	if b.tracing {
		trace.Trace("PeekPoke",
			"Behavior", cmd.kind.Name(),
			"Bridge", b.name,
			"Signal", cmd.name,
			"Blocking", cmd.done != nil,
			"Cycle", b.design.Cycle(),
		)
	}

	if res.err != nil {
		res.err = errors.Wrapf(res.err, "%s %s", cmd.kind.Name(), cmd.name)
	}

	return res
}

// latch keeps the first error of a non-blocking command.
func (b *Bridge) latch(err error) {
	b.errLock.Lock()
	defer b.errLock.Unlock()

	if b.latched == nil {
		b.latched = errors.Wrap(err, "deferred")
	}
}

func (b *Bridge) takeLatched() error {
	b.errLock.Lock()
	defer b.errLock.Unlock()

	err := b.latched
	b.latched = nil

	return err
}
