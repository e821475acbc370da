package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/robgonnella/fleetprobe/internal/status"
)

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	return tw
}

func row(tw *tabwriter.Writer, cols ...interface{}) {
	parts := make([]string, len(cols))

	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}

	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func printCategorySummary(w io.Writer, summary map[status.Category]int) {
	tw := newTable(w, "STATUS", "CODE", "COUNT")

	for _, c := range status.Categories {
		if n, ok := summary[c]; ok {
			row(tw, c, c.Code(), n)
		}
	}

	tw.Flush()
}

func printFailures(w io.Writer, failures map[string]int) {
	if len(failures) == 0 {
		return
	}

	reasons := make([]string, 0, len(failures))

	for r := range failures {
		reasons = append(reasons, r)
	}

	sort.Strings(reasons)

	tw := newTable(w, "REASON", "COUNT")

	for _, r := range reasons {
		row(tw, r, failures[r])
	}

	tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Local().Format("2006-01-02 15:04:05")
}

func sortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))

	for id := range m {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}
