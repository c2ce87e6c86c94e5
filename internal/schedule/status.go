package schedule

import "time"

// StatusAt evaluates the power status at now.
//
// The first interval (in the given order) covering now decides IsOn; with no
// covering interval power is assumed on. NextChange is the earliest interval
// boundary strictly after now, or nil when there is none. Intervals with
// unparseable bounds are skipped entirely.
func StatusAt(now time.Time, intervals []Interval) Status {
	status := Status{IsOn: true}
	covered := false

	var next time.Time
	haveNext := false
	consider := func(t time.Time) {
		if t.After(now) && (!haveNext || t.Before(next)) {
			next = t
			haveNext = true
		}
	}

	for _, iv := range intervals {
		start, end, ok := iv.Bounds()
		if !ok {
			continue
		}
		if !covered && !now.Before(start) && now.Before(end) {
			status.IsOn = iv.State == StateOn
			covered = true
		}
		consider(start)
		consider(end)
	}

	if haveNext {
		status.NextChange = &next
	}
	return status
}
