package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/robgonnella/fleetprobe/internal/history"
	"github.com/robgonnella/fleetprobe/internal/status"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type windowFlags struct {
	start string
	end   string
	days  int
	ids   []int
}

// window parses the date flags. The end date is inclusive on the command
// line so the window ends at midnight after it.
func (f *windowFlags) window(now time.Time) (history.Window, error) {
	var start, end *time.Time

	if f.start != "" {
		t, err := time.ParseInLocation(dateLayout, f.start, time.Local)

		if err != nil {
			return history.Window{}, fmt.Errorf("invalid start date %q: %w", f.start, err)
		}

		start = &t
	}

	if f.end != "" {
		t, err := time.ParseInLocation(dateLayout, f.end, time.Local)

		if err != nil {
			return history.Window{}, fmt.Errorf("invalid end date %q: %w", f.end, err)
		}

		t = t.AddDate(0, 0, 1)
		end = &t
	}

	return history.NewWindow(start, end, f.days, now)
}

func historyCmd(props *CommandProps) *cobra.Command {
	flags := &windowFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Report on recorded probe outcomes",
	}

	cmd.PersistentFlags().StringVar(&flags.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.PersistentFlags().StringVar(&flags.end, "end", "", "end date inclusive (YYYY-MM-DD)")
	cmd.PersistentFlags().IntVar(&flags.days, "days", 0, "number of days in the window")
	cmd.PersistentFlags().IntSliceVar(&flags.ids, "id", nil, "limit to target id, repeatable")

	cmd.AddCommand(&cobra.Command{
		Use:   "counts",
		Short: "Status counts per target",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := flags.window(time.Now())

			if err != nil {
				return err
			}

			appCore, err := props.core()

			if err != nil {
				return err
			}

			counts, err := appCore.Counts(cmd.Context(), w, flags.ids)

			if err != nil {
				return err
			}

			printCounts(cmd.OutOrStdout(), counts)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "percent",
		Short: "Percent healthy per target",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := flags.window(time.Now())

			if err != nil {
				return err
			}

			appCore, err := props.core()

			if err != nil {
				return err
			}

			summaries, err := appCore.Summaries(cmd.Context(), w, flags.ids)

			if err != nil {
				return err
			}

			printSummaries(cmd.OutOrStdout(), summaries)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "changes",
		Short: "Status change timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := flags.window(time.Now())

			if err != nil {
				return err
			}

			appCore, err := props.core()

			if err != nil {
				return err
			}

			changes, err := appCore.Changes(cmd.Context(), w, flags.ids)

			if err != nil {
				return err
			}

			printChanges(cmd.OutOrStdout(), changes)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "weekly",
		Short: "Percent healthy today, over the last week and year to date",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCore, err := props.core()

			if err != nil {
				return err
			}

			report, err := appCore.Weekly(cmd.Context(), flags.ids)

			if err != nil {
				return err
			}

			printWeekly(cmd.OutOrStdout(), report)

			return nil
		},
	})

	return cmd
}

func printCounts(out io.Writer, counts map[int]map[status.Category]int) {
	headers := []string{"ID"}

	for _, c := range status.Categories {
		headers = append(headers, c.String())
	}

	tw := newTable(out, headers...)

	for _, id := range sortedIDs(counts) {
		cols := []interface{}{id}

		for _, c := range status.Categories {
			cols = append(cols, counts[id][c])
		}

		row(tw, cols...)
	}

	tw.Flush()
}

func printSummaries(out io.Writer, summaries map[int]*history.Summary) {
	tw := newTable(out, "ID", "PERCENT", "HEALTHY", "TOTAL", "LAST", "LAST SEEN")

	for _, id := range sortedIDs(summaries) {
		s := summaries[id]
		row(tw, id, fmt.Sprintf("%.1f%%", s.Percent), s.Healthy, s.Total, s.Last, formatTime(s.LastTimestamp))
	}

	tw.Flush()
}

func printChanges(out io.Writer, changes []history.Change) {
	tw := newTable(out, "TIME", "ID", "FROM", "TO", "AFTER")

	for _, c := range changes {
		row(tw, formatTime(c.Timestamp), c.TargetID, c.From, c.To, c.Since.Round(time.Second))
	}

	tw.Flush()
}

func formatPercent(p *history.Percent) string {
	if p == nil {
		return "-"
	}

	return fmt.Sprintf("%.1f%% (%d/%d)", p.Percent, p.Healthy, p.Total)
}

func printWeekly(out io.Writer, report map[int]*history.Weekly) {
	tw := newTable(out, "ID", "TODAY", "WEEK", "YEAR")

	for _, id := range sortedIDs(report) {
		w := report[id]
		row(tw, id, formatPercent(w.Today), formatPercent(w.Week), formatPercent(w.Year))
	}

	tw.Flush()
}
