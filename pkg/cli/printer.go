// Package cli renders run progress for the terminal commands.
package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/YNCK000/strudel-studio/pkg/runtime"
	"github.com/YNCK000/strudel-studio/pkg/validator"
)

var bold = color.New(color.Bold).SprintfFunc()

type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out: out,
	}
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// PrintEvent renders one run event. Terminal events end with a trailing
// newline so the shell prompt lands cleanly.
func (p *Printer) PrintEvent(ev runtime.Event) {
	switch e := ev.(type) {
	case *runtime.StartedEvent:
		p.Printf("%s session %s\n", bold("Generating"), e.SessionID)
	case *runtime.ProgressEvent:
		p.Printf("%s (iteration %d)\n", e.Status, e.Iteration)
	case *runtime.ToolsEvent:
		p.Printf("… %s\n", e.Status)
	case *runtime.CompleteEvent:
		p.printComplete(e)
	case *runtime.ErrorEvent:
		p.PrintError(fmt.Errorf("%s", e.Error))
	}
}

func (p *Printer) printComplete(e *runtime.CompleteEvent) {
	p.Printf("\n%s\n", e.Content)

	if e.Status == runtime.StatusBudgetExceeded {
		p.Printf("\n⚠️  %s\n", bold("Stopped on budget after %d iterations (%.1fs)", e.Iterations, float64(e.ElapsedMS)/1000))
		return
	}

	verdict := "❌ final pattern failed validation"
	if e.Validated {
		verdict = "✅ final pattern validated"
	}
	p.Printf("\n%s · %d iterations · %.1fs\n", verdict, e.Iterations, float64(e.ElapsedMS)/1000)
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) {
	p.Printf("❌ %s\n", err)
}

// PrintValidation renders a validation result for the validate command.
func (p *Printer) PrintValidation(res validator.Result) {
	p.Println(validator.FormatReport(res))
}
