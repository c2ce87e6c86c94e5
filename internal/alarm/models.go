package alarm

import "time"

// ActiveAlert is a single alert currently raised for a region.
type ActiveAlert struct {
	RegionID   string    `json:"regionId"`
	RegionType string    `json:"regionType"`
	Type       string    `json:"type"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// RegionAlert is one entry of GET /api/v3/alerts.
type RegionAlert struct {
	RegionID      string        `json:"regionId"`
	RegionType    string        `json:"regionType"`
	RegionName    string        `json:"regionName"`
	RegionEngName string        `json:"regionEngName"`
	LastUpdate    time.Time     `json:"lastUpdate"`
	ActiveAlerts  []ActiveAlert `json:"activeAlerts"`
}

// AlertTypes returns the distinct alert types raised for the region, in
// upstream order.
func (r RegionAlert) AlertTypes() []string {
	seen := make(map[string]bool, len(r.ActiveAlerts))
	types := make([]string, 0, len(r.ActiveAlerts))
	for _, a := range r.ActiveAlerts {
		if a.Type == "" || seen[a.Type] {
			continue
		}
		seen[a.Type] = true
		types = append(types, a.Type)
	}
	return types
}

// alertsStatus is the body of GET /api/v3/alerts/status.
type alertsStatus struct {
	LastActionIndex int64 `json:"lastActionIndex"`
}

// Response is a successful upstream response ready to relay.
type Response struct {
	Status      int
	ContentType string
	// Body holds the raw bytes for non-JSON content.
	Body []byte
	// JSON holds the decoded document when IsJSON is set.
	JSON   any
	IsJSON bool
}
