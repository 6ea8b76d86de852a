// Package cli provides table helpers for human-readable output.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const tablePadding = 2

func writeTable(out io.Writer, headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(out, 0, 0, tablePadding, ' ', tabwriter.StripEscape)
	if len(headers) > 0 {
		fmt.Fprintln(writer, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(writer, strings.Join(row, "\t"))
	}
	return writer.Flush()
}

// writeKeyValues prints aligned "Key: value" pairs for detail views.
func writeKeyValues(out io.Writer, pairs [][2]string) error {
	writer := tabwriter.NewWriter(out, 0, 0, tablePadding, ' ', 0)
	for _, pair := range pairs {
		fmt.Fprintf(writer, "%s:\t%s\n", pair[0], pair[1])
	}
	return writer.Flush()
}

func formatYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// truncate shortens s to max runes, ending with an ellipsis. Newlines
// collapse to spaces so table rows stay on one line.
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if max <= 3 || len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
