package history

import (
	"sort"
	"time"

	"github.com/robgonnella/fleetprobe/internal/status"
)

// Percent healthy share of a target's records
type Percent struct {
	Percent float64
	Healthy int
	Total   int
}

// Change a status transition for one target
type Change struct {
	TargetID  int
	Timestamp time.Time
	From      status.Category
	To        status.Category
	// Since time elapsed since the target's previous change, or since its
	// first record in the window
	Since time.Duration
}

// Summary per target aggregate over a window
type Summary struct {
	TargetID      int
	Counts        map[status.Category]int
	Percent       float64
	Healthy       int
	Total         int
	Last          status.Category
	LastTimestamp time.Time
}

// Weekly percent healthy today, over the last seven days and year to
// date. A nil period has no records.
type Weekly struct {
	TargetID int
	Today    *Percent
	Week     *Percent
	Year     *Percent
}

// selectRecords returns the records inside w that pass filter, in
// timestamp then target id order
func selectRecords(records []*status.Outcome, w Window, filter []int) []*status.Outcome {
	allowed := map[int]bool{}

	for _, id := range filter {
		allowed[id] = true
	}

	selected := []*status.Outcome{}

	for _, r := range records {
		if r == nil || !w.Contains(r.Timestamp) {
			continue
		}

		if len(allowed) > 0 && !allowed[r.TargetID] {
			continue
		}

		selected = append(selected, r)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if !selected[i].Timestamp.Equal(selected[j].Timestamp) {
			return selected[i].Timestamp.Before(selected[j].Timestamp)
		}

		return selected[i].TargetID < selected[j].TargetID
	})

	return selected
}

// StatusCounts counts records per target and category
func StatusCounts(records []*status.Outcome, w Window, filter []int) map[int]map[status.Category]int {
	counts := map[int]map[status.Category]int{}

	for _, r := range selectRecords(records, w, filter) {
		if _, ok := counts[r.TargetID]; !ok {
			counts[r.TargetID] = map[status.Category]int{}
		}

		counts[r.TargetID][r.Category]++
	}

	return counts
}

// PercentHealthy returns 100 * healthy / total per target. Targets with no
// records are absent.
func PercentHealthy(records []*status.Outcome, w Window, filter []int) map[int]Percent {
	percents := map[int]Percent{}

	for id, counts := range StatusCounts(records, w, filter) {
		percents[id] = percentOf(counts)
	}

	return percents
}

// DetectChanges returns status transitions in timestamp then target id
// order. A target's first record is never a change.
func DetectChanges(records []*status.Outcome, w Window, filter []int) []Change {
	changes := []Change{}
	last := map[int]*status.Outcome{}
	lastChange := map[int]time.Time{}

	for _, r := range selectRecords(records, w, filter) {
		prev, ok := last[r.TargetID]

		last[r.TargetID] = r

		if !ok {
			lastChange[r.TargetID] = r.Timestamp
			continue
		}

		if prev.Category == r.Category {
			continue
		}

		changes = append(changes, Change{
			TargetID:  r.TargetID,
			Timestamp: r.Timestamp,
			From:      prev.Category,
			To:        r.Category,
			Since:     r.Timestamp.Sub(lastChange[r.TargetID]),
		})

		lastChange[r.TargetID] = r.Timestamp
	}

	return changes
}

// Summarize returns a Summary per target with records in the window
func Summarize(records []*status.Outcome, w Window, filter []int) map[int]*Summary {
	summaries := map[int]*Summary{}

	for _, r := range selectRecords(records, w, filter) {
		s, ok := summaries[r.TargetID]

		if !ok {
			s = &Summary{
				TargetID: r.TargetID,
				Counts:   map[status.Category]int{},
			}
			summaries[r.TargetID] = s
		}

		s.Counts[r.Category]++
		s.Last = r.Category
		s.LastTimestamp = r.Timestamp
	}

	for _, s := range summaries {
		p := percentOf(s.Counts)
		s.Percent = p.Percent
		s.Healthy = p.Healthy
		s.Total = p.Total
	}

	return summaries
}

// WeeklyWindows returns the today, week and year to date windows for now
func WeeklyWindows(now time.Time) (today, week, year Window) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := midnight.AddDate(0, 0, 1)

	today = Window{Start: midnight, End: end}
	week = Window{Start: midnight.AddDate(0, 0, -6), End: end}
	year = Window{Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), End: end}

	return today, week, year
}

// WeeklyReport returns percent healthy today, over the last seven days and
// year to date for every target with records in any of those periods
func WeeklyReport(records []*status.Outcome, now time.Time, filter []int) map[int]*Weekly {
	today, week, year := WeeklyWindows(now)

	report := map[int]*Weekly{}

	entry := func(id int) *Weekly {
		w, ok := report[id]

		if !ok {
			w = &Weekly{TargetID: id}
			report[id] = w
		}

		return w
	}

	for id, p := range PercentHealthy(records, year, filter) {
		p := p
		entry(id).Year = &p
	}

	for id, p := range PercentHealthy(records, week, filter) {
		p := p
		entry(id).Week = &p
	}

	for id, p := range PercentHealthy(records, today, filter) {
		p := p
		entry(id).Today = &p
	}

	return report
}

// WeeklySpan returns the window covering every period of the weekly report
func WeeklySpan(now time.Time) Window {
	_, week, year := WeeklyWindows(now)

	if week.Start.Before(year.Start) {
		return week
	}

	return year
}

func percentOf(counts map[status.Category]int) Percent {
	p := Percent{Healthy: counts[status.Healthy]}

	for _, n := range counts {
		p.Total += n
	}

	if p.Total > 0 {
		p.Percent = 100 * float64(p.Healthy) / float64(p.Total)
	}

	return p
}
