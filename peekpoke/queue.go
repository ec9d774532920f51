package peekpoke

import (
	"math/big"
	"sync"
)

type commandKind int

const (
	cmdPoke commandKind = iota
	cmdPeek
	cmdStep
	cmdSync
)

func (k commandKind) Name() string {
	switch k {
	case cmdPoke:
		return "Poke"
	case cmdPeek:
		return "Peek"
	case cmdStep:
		return "Step"
	case cmdSync:
		return "Sync"
	default:
		panic("invalid command kind")
	}
}

type result struct {
	value *big.Int
	err   error
}

type command struct {
	kind  commandKind
	name  string
	value *big.Int
	n     uint64

	// done is nil for non-blocking commands.
	done chan result
}

// commandQueue is an unbounded FIFO so that non-blocking calls never wait
// for the worker.
type commandQueue struct {
	lock   sync.Mutex
	cond   *sync.Cond
	items  []*command
	closed bool
}

func newCommandQueue() *commandQueue {
	q := &commandQueue{}
	q.cond = sync.NewCond(&q.lock)

	return q
}

func (q *commandQueue) push(cmd *command) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, cmd)
	q.cond.Signal()

	return true
}

// pop blocks until a command is available. It returns false once the queue
// is closed and drained.
func (q *commandQueue) pop() (*command, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}

	if len(q.items) == 0 {
		return nil, false
	}

	cmd := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]

	return cmd, true
}

func (q *commandQueue) close() {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.closed = true
	q.cond.Broadcast()
}
