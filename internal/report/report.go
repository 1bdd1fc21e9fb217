package report

import (
	"fmt"
	"io"

	"github.com/mitchellh/colorstring"
)

// Reporter writes the console output of a run: values and the final count
// go to out, failures go to errOut
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	colors *colorstring.Colorize
}

func New(out, errOut io.Writer, color bool) *Reporter {
	return &Reporter{
		out:    out,
		errOut: errOut,
		colors: &colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: !color,
			Reset:   true,
		},
	}
}

func (reporter *Reporter) Value(index int, value any) {
	fmt.Fprintf(reporter.out, "Element at %d: %v\n", index, value)
}

// Failure only colors the prefix, messages may contain brackets
func (reporter *Reporter) Failure(err error) {
	fmt.Fprintf(reporter.errOut, "%s %s\n", reporter.colors.Color("[red]Exception:"), err)
}

func (reporter *Reporter) Total(size int) {
	fmt.Fprintf(reporter.out, "Total elements: %d\n", size)
}
