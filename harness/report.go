package harness

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Report writes every expectation and the verdict of the run.
func (h *Harness) Report(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s (seed %d)", h.targetName, h.randomSeed))
	t.AppendHeader(table.Row{"Cycle", "Check", "Expected", "Actual", "Result"})

	for _, r := range h.records {
		t.AppendRow(table.Row{r.Cycle, r.Check, r.Expected, r.Actual,
			outcome(r.Pass)})
	}

	t.AppendFooter(table.Row{"", "", "", "Cycles", h.t})
	t.Render()

	if h.pass {
		color.New(color.FgGreen, color.Bold).
			Fprintf(w, "*** PASSED *** after %d cycles\n", h.t)
		return
	}

	color.New(color.FgRed, color.Bold).
		Fprintf(w, "*** FAILED *** (code = 1) at cycle %d\n", h.failT)
}
