package locations

// Selection is a resolved oblast/city/group choice together with the
// options offered at each level.
type Selection struct {
	OblastID string   `json:"oblastId"`
	CityID   string   `json:"cityId"`
	GroupID  string   `json:"groupId"`
	Oblasts  []Option `json:"oblasts"`
	Cities   []Option `json:"cities"`
	Groups   []Option `json:"groups"`
}

// Resolve validates a requested selection top-down. A level whose requested
// ID is not a child of the resolved parent falls back to the parent's first
// child, or to "" when the parent has none. Changing the oblast therefore
// resets city and group, and changing the city resets the group.
func (c *Catalog) Resolve(oblastID, cityID, groupID string) Selection {
	sel := Selection{Oblasts: c.Oblasts()}

	sel.OblastID = pick(sel.Oblasts, oblastID)
	sel.Cities = c.Cities(sel.OblastID)
	sel.CityID = pick(sel.Cities, cityID)
	sel.Groups = c.Groups(sel.CityID)
	sel.GroupID = pick(sel.Groups, groupID)

	return sel
}

func pick(opts []Option, id string) string {
	for _, o := range opts {
		if o.ID == id {
			return id
		}
	}
	if len(opts) == 0 {
		return ""
	}
	return opts[0].ID
}
