package doctor

import (
	"fmt"
	"io"
	"strings"
)

// Printer formats doctor output.
type Printer struct {
	out io.Writer
}

// NewPrinter constructs a printer that writes to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// PrintHeader renders the heading along with the inspected target.
func (p *Printer) PrintHeader(title, configFile, profile string) {
	fmt.Fprintf(p.out, "%s\n\n", title)
	fmt.Fprintf(p.out, "Config: %s\n", configFile)
	if profile != "" {
		fmt.Fprintf(p.out, "Profile: %s\n", profile)
	}
	fmt.Fprintln(p.out)
}

// PrintCheck prints the outcome of a single check.
func (p *Printer) PrintCheck(res Result) {
	fmt.Fprintf(p.out, "[%s] %s", strings.ToUpper(string(res.Status)), res.Name)
	if res.Details != "" {
		fmt.Fprintf(p.out, " - %s", res.Details)
	}
	fmt.Fprintln(p.out)
}

// Summary prints aggregate status counts.
func (p *Printer) Summary(results []Result) {
	counts := map[Status]int{}
	for _, res := range results {
		counts[res.Status]++
	}
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Summary: %d ok, %d warnings, %d errors\n", counts[StatusOK], counts[StatusWarn], counts[StatusError])
	if counts[StatusError] > 0 {
		fmt.Fprintln(p.out, "Resolve errors above then re-run 'blogapi doctor'.")
	}
}
