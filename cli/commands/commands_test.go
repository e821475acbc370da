package commands

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/robgonnella/fleetprobe/internal/core"
	"github.com/robgonnella/fleetprobe/internal/discovery"
	"github.com/robgonnella/fleetprobe/internal/event"
	"github.com/robgonnella/fleetprobe/internal/exception"
	"github.com/robgonnella/fleetprobe/internal/history"
	"github.com/robgonnella/fleetprobe/internal/matcher"
	"github.com/robgonnella/fleetprobe/internal/status"
	"github.com/stretchr/testify/assert"
)

func TestWindowFlags(t *testing.T) {
	now := time.Date(2024, time.May, 10, 15, 0, 0, 0, time.Local)

	t.Run("treats end date as inclusive", func(st *testing.T) {
		flags := &windowFlags{start: "2024-05-01", end: "2024-05-03"}

		w, err := flags.window(now)

		assert.NoError(st, err)
		assert.Equal(st, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.Local), w.Start)
		assert.Equal(st, time.Date(2024, time.May, 4, 0, 0, 0, 0, time.Local), w.End)
	})

	t.Run("counts days back from now", func(st *testing.T) {
		flags := &windowFlags{days: 2}

		w, err := flags.window(now)

		assert.NoError(st, err)
		assert.Equal(st, now, w.End)
		assert.Equal(st, now.Add(-48*time.Hour), w.Start)
	})

	t.Run("rejects bad dates", func(st *testing.T) {
		flags := &windowFlags{start: "05/01/2024"}

		_, err := flags.window(now)

		assert.Error(st, err)
	})

	t.Run("rejects reversed dates", func(st *testing.T) {
		flags := &windowFlags{start: "2024-05-03", end: "2024-05-01"}

		_, err := flags.window(now)

		assert.ErrorIs(st, err, exception.ErrInvalidWindow)
	})
}

func TestRender(t *testing.T) {
	t.Run("prints dry run listing", func(st *testing.T) {
		out := &bytes.Buffer{}

		printSweepReport(out, &core.SweepReport{
			SweepResult: &discovery.SweepResult{
				DryRun:  true,
				Planned: 2,
				Listing: []discovery.ScanTarget{
					{Address: "10.1.1.1", Port: 5989},
					{Address: "10.1.1.2", Port: 5989},
				},
			},
		}, true)

		assert.True(st, strings.Contains(out.String(), "10.1.1.2"))
		assert.True(st, strings.Contains(out.String(), "planned: 2"))
	})

	t.Run("prints matches and failures", func(st *testing.T) {
		out := &bytes.Buffer{}

		printSweepReport(out, &core.SweepReport{
			SweepResult: &discovery.SweepResult{
				ID:        "abc",
				OpenHosts: []discovery.ScanResult{{Address: "10.1.1.1", Port: 5989, Open: true}},
				Planned:   3,
				Tested:    3,
				Failures:  map[string]int{"connection refused": 2},
			},
			Matches: []matcher.Match{
				{Address: "10.1.1.1", Port: 5989, Classification: matcher.Unknown, Category: status.AuthError},
			},
			Unknown: 1,
		}, true)

		text := out.String()

		assert.True(st, strings.Contains(text, "AuthError"))
		assert.True(st, strings.Contains(text, "connection refused"))
		assert.True(st, strings.Contains(text, "tested 3"))
	})

	t.Run("prints weekly report", func(st *testing.T) {
		out := &bytes.Buffer{}

		printWeekly(out, map[int]*history.Weekly{
			2: {TargetID: 2, Year: &history.Percent{Percent: 50, Healthy: 1, Total: 2}},
			1: {TargetID: 1},
		})

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")

		assert.Equal(st, 3, len(lines))
		assert.True(st, strings.HasPrefix(lines[1], "1"))
		assert.True(st, strings.Contains(lines[2], "50.0% (1/2)"))
	})

	t.Run("parses target ids", func(st *testing.T) {
		ids, err := parseIDs([]string{"3", "1"})

		assert.NoError(st, err)
		assert.Equal(st, []int{3, 1}, ids)

		_, err = parseIDs([]string{"x"})

		assert.Error(st, err)
	})
}

func TestFollow(t *testing.T) {
	t.Run("prints delivered events before stop returns", func(st *testing.T) {
		events := event.NewEventManager()
		out := &bytes.Buffer{}

		stop := followSweep(events, out)

		for i := 1; i <= 50; i++ {
			events.Send(event.Event{
				Type:    event.SweepResultType,
				Payload: discovery.ScanResult{Address: fmt.Sprintf("10.0.0.%d", i), Port: 5989, Open: i%2 == 0},
			})
		}

		stop()

		out.WriteString("report\n")

		expected := []string{}

		for i := 2; i <= 50; i += 2 {
			expected = append(expected, fmt.Sprintf("open 10.0.0.%d:5989", i))
		}

		expected = append(expected, "report")

		assert.Equal(st, expected, strings.Split(strings.TrimSpace(out.String()), "\n"))
	})
}

