package harness

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// SimulationRun runs the test once and tears the harness down on every way
// out of it. The exit code is 0 only if every expectation held and the run
// finished without a transport failure. A panic other than a transport
// failure is re-raised after teardown.
func (h *Harness) SimulationRun(test Test) (exitCode int, err error) {
	switch h.state {
	case stateRunning:
		return 1, ErrRunning
	case stateTornDown:
		return 1, ErrTornDown
	}

	h.state = stateRunning

	defer func() {
		r := recover()

		code, teardownErr := h.Teardown()
		exitCode, err = code, teardownErr

		switch e := r.(type) {
		case nil:
		case *TransportError:
			h.logger.Error("test aborted",
				"Error", e.Error(),
				"Cycle", h.t,
			)
			err = stderrors.Join(e, teardownErr)
		default:
			panic(r)
		}

		if err != nil && exitCode == 0 {
			exitCode = 1
		}
	}()

	test.RunTest(h)

	return 0, nil
}

// Teardown finalizes every bridge of the registry and returns the verdict:
// 0 if every expectation held, 1 otherwise. Bridge failures are returned as
// the error.
func (h *Harness) Teardown() (int, error) {
	if h.state == stateTornDown {
		return 1, ErrTornDown
	}

	h.state = stateTornDown

	if h.pass {
		h.logger.Info("*** PASSED ***", "Cycles", h.t)
	} else {
		h.logger.Error("*** FAILED ***", "Code", 1, "Cycle", h.failT)
	}

	for _, d := range h.tokenHashers.Digests() {
		h.logger.Debug("TOKENS",
			"Stream", d.Stream,
			"Count", d.Count,
			"Hash", d.Hash,
		)
	}

	err := h.registry.FinishAll()
	if err != nil {
		err = errors.Wrap(err, "teardown")
	}

	if !h.pass {
		return 1, err
	}

	return 0, err
}
