package schedule

import "time"

// Kind is the kind of outage event an interval describes.
type Kind string

const (
	KindPlanned   Kind = "planned"
	KindEmergency Kind = "emergency"
)

// State is the power state during an interval.
type State string

const (
	StateOff State = "off"
	StateOn  State = "on"
)

// isoLayout matches the wire form the page receives (UTC, millisecond precision).
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Interval is a half-open period [Start, End) with a known power state.
// Start and End are RFC 3339 timestamps; an interval whose bounds do not
// parse is ignored by StatusAt.
type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Kind  Kind   `json:"kind"`
	State State  `json:"state"`
}

// Bounds parses Start and End. ok is false if either fails to parse.
func (iv Interval) Bounds() (start, end time.Time, ok bool) {
	start, err := time.Parse(time.RFC3339, iv.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(time.RFC3339, iv.End)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Status is the derived power status at a reference instant.
type Status struct {
	IsOn       bool       `json:"isOn"`
	NextChange *time.Time `json:"nextChange"`
}

func formatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
