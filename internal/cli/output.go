package cli

import (
	"fmt"
	"os"

	"github.com/annohub/anno/internal/core"
	"github.com/annohub/anno/internal/report"
	"github.com/fatih/color"
)

// printReport writes a report's buckets to stderr.
func printReport(rep *report.Report) {
	if rep.Empty() {
		return
	}
	yellow := color.New(color.FgYellow)
	fmt.Fprintln(os.Stderr)
	yellow.Fprintln(os.Stderr, "Unresolved names:")
	fmt.Fprint(os.Stderr, rep.Summary())
}

// printFailed lists files that could not be processed.
func printFailed(failed []core.FailedFile) {
	if len(failed) == 0 {
		return
	}
	red := color.New(color.FgRed)
	red.Fprintf(os.Stderr, "%d file(s) failed:\n", len(failed))
	for _, f := range failed {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", f.Path, f.Err)
	}
}

// writeOutput writes data to path, or to stdout if path is empty.
func writeOutput(path string, data []byte) {
	if path == "" {
		os.Stdout.Write(data)
		fmt.Println()
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		exitError("write %s: %v", path, err)
	}
}

// progressPrinter renders pipeline progress on a single line.
func progressPrinter(phase string, current, total int) {
	if total > 0 {
		fmt.Printf("\r  %s %d/%d", phase, current, total)
	}
}
