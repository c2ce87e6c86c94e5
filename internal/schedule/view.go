package schedule

import (
	"fmt"
	"time"
)

// Labels shown on the status panel.
const (
	LabelPowerOn     = "Світло є"
	LabelPowerOff    = "Світла немає"
	LabelNoData      = "Немає даних"
	LabelNoCountdown = "—"

	labelPlanned   = "Планове"
	labelEmergency = "Екстрене"
	labelOutage    = "Відключення"
	labelRestore   = "Включення"
)

// DefaultGroup is used when no group is selected.
const DefaultGroup = "g1"

// Entry is one schedule row as the page renders it.
type Entry struct {
	Interval
	KindLabel  string `json:"kindLabel"`
	StateLabel string `json:"stateLabel"`
	TimeRange  string `json:"timeRange"`
}

// View is everything the live status panel needs for a single tick.
type View struct {
	Group           string     `json:"group"`
	Now             time.Time  `json:"now"`
	IsOn            bool       `json:"isOn"`
	StatusLabel     string     `json:"statusLabel"`
	Clock           string     `json:"clock"`
	NextChange      *time.Time `json:"nextChange"`
	NextChangeLabel string     `json:"nextChangeLabel"`
	Countdown       string     `json:"countdown"`
	Entries         []Entry    `json:"entries"`
}

// BuildView synthesizes the group's schedule at now and evaluates it.
// Times are rendered in now's location.
func BuildView(now time.Time, groupID string) View {
	if groupID == "" {
		groupID = DefaultGroup
	}
	intervals := Synthesize(now, groupID)
	status := StatusAt(now, intervals)

	v := View{
		Group:           groupID,
		Now:             now,
		IsOn:            status.IsOn,
		StatusLabel:     LabelPowerOff,
		Clock:           now.Format("15:04:05"),
		NextChangeLabel: LabelNoData,
		Countdown:       LabelNoCountdown,
		Entries:         make([]Entry, 0, len(intervals)),
	}
	if status.IsOn {
		v.StatusLabel = LabelPowerOn
	}
	if status.NextChange != nil {
		next := status.NextChange.In(now.Location())
		v.NextChange = &next
		v.NextChangeLabel = next.Format("02.01, 15:04")
		v.Countdown = Countdown(next.Sub(now))
	}

	for _, iv := range intervals {
		v.Entries = append(v.Entries, newEntry(iv, now.Location()))
	}
	return v
}

func newEntry(iv Interval, loc *time.Location) Entry {
	e := Entry{
		Interval:   iv,
		KindLabel:  labelEmergency,
		StateLabel: labelRestore,
	}
	if iv.Kind == KindPlanned {
		e.KindLabel = labelPlanned
	}
	if iv.State == StateOff {
		e.StateLabel = labelOutage
	}
	if start, end, ok := iv.Bounds(); ok {
		e.TimeRange = fmt.Sprintf("%s — %s", start.In(loc).Format("15:04"), end.In(loc).Format("15:04"))
	}
	return e
}
