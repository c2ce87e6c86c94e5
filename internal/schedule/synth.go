package schedule

import (
	"sort"
	"time"
)

const (
	plannedDuration   = 90 * time.Minute
	emergencyDuration = 30 * time.Minute
)

// seedFor maps a group ID to the seed driving the demo schedule.
// Only g2 and g3 are recognised; everything else is seed 1.
func seedFor(groupID string) int {
	switch groupID {
	case "g2":
		return 2
	case "g3":
		return 3
	default:
		return 1
	}
}

// hourStart truncates t to the start of its hour in t's own location.
func hourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// Synthesize returns the demo schedule for a group: one planned and one
// emergency outage, both off, ordered by start. The result depends only on
// the hour containing now and the group, so repeated calls within the same
// hour return identical intervals.
func Synthesize(now time.Time, groupID string) []Interval {
	seed := seedFor(groupID)
	base := hourStart(now)

	plannedStart := base.Add(time.Duration(seed%3) * time.Hour)
	emergencyStart := base.Add(time.Duration(seed*2) * 30 * time.Minute)

	intervals := []Interval{
		{
			Start: formatISO(plannedStart),
			End:   formatISO(plannedStart.Add(plannedDuration)),
			Kind:  KindPlanned,
			State: StateOff,
		},
		{
			Start: formatISO(emergencyStart),
			End:   formatISO(emergencyStart.Add(emergencyDuration)),
			Kind:  KindEmergency,
			State: StateOff,
		},
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		a, _, _ := intervals[i].Bounds()
		b, _, _ := intervals[j].Bounds()
		return a.Before(b)
	})
	return intervals
}
