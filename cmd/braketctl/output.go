package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/waihoh/amazon-braket-examples/internal/braket"
	"github.com/waihoh/amazon-braket-examples/internal/device"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

const histogramWidth = 40

// renderCounts formats measurement counts as a bitstring histogram,
// sorted by bitstring.
func renderCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "(no measurements)\n"
	}

	bitstrings := make([]string, 0, len(counts))
	max := 0
	for bits, n := range counts {
		bitstrings = append(bitstrings, bits)
		if n > max {
			max = n
		}
	}
	sort.Strings(bitstrings)

	var b strings.Builder
	for _, bits := range bitstrings {
		n := counts[bits]
		bar := 0
		if max > 0 {
			bar = n * histogramWidth / max
		}
		fmt.Fprintf(&b, "%s  %6d  %s\n", bits, n, strings.Repeat("█", bar))
	}
	return b.String()
}

// renderTopology formats a connectivity graph one qubit per line.
func renderTopology(topo device.Topology) string {
	var b strings.Builder
	for _, id := range topo.QubitIDs() {
		fmt.Fprintf(&b, "%3s: %s\n", id, strings.Join(topo.Neighbors(id), ", "))
	}
	return b.String()
}

// renderTaskLine is one row of the task list output.
func renderTaskLine(created, status, mode string, shots int64, arn string) string {
	return fmt.Sprintf("%s  %-10s  %-9s  %6d  %s",
		created, statusColor(status), mode, shots, arn)
}

func statusColor(status string) string {
	switch braket.Status(status) {
	case braket.StatusCompleted:
		return colorize(colorGreen, status)
	case braket.StatusFailed, braket.StatusCancelled:
		return colorize(colorRed, status)
	default:
		return colorize(colorYellow, status)
	}
}
