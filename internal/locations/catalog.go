package locations

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Option is one selectable entry at any level of the hierarchy.
type Option struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type oblastDoc struct {
	Option `yaml:",inline"`
	Cities []Option `yaml:"cities"`
}

type catalogDoc struct {
	Oblasts []oblastDoc         `yaml:"oblasts"`
	Groups  map[string][]string `yaml:"groups"`
}

// Catalog is the static oblast -> city -> group reference data.
// It is immutable after Load.
type Catalog struct {
	oblasts []Option
	cities  map[string][]Option // keyed by oblast ID
	groups  map[string][]Option // keyed by city ID
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse builds a Catalog from a YAML document.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	c := &Catalog{
		cities: make(map[string][]Option, len(doc.Oblasts)),
		groups: make(map[string][]Option, len(doc.Groups)),
	}
	cityOwner := make(map[string]string)

	for _, o := range doc.Oblasts {
		if o.ID == "" {
			return nil, fmt.Errorf("oblast %q has no id", o.Name)
		}
		if _, dup := c.cities[o.ID]; dup {
			return nil, fmt.Errorf("duplicate oblast %q", o.ID)
		}
		for _, city := range o.Cities {
			if city.ID == "" {
				return nil, fmt.Errorf("city %q in oblast %q has no id", city.Name, o.ID)
			}
			if owner, dup := cityOwner[city.ID]; dup {
				return nil, fmt.Errorf("city %q listed under both %q and %q", city.ID, owner, o.ID)
			}
			cityOwner[city.ID] = o.ID
		}
		c.oblasts = append(c.oblasts, o.Option)
		c.cities[o.ID] = append([]Option(nil), o.Cities...)
	}

	for cityID, ids := range doc.Groups {
		if _, ok := cityOwner[cityID]; !ok {
			return nil, fmt.Errorf("groups for unknown city %q", cityID)
		}
		opts := make([]Option, 0, len(ids))
		for _, id := range ids {
			opts = append(opts, Option{ID: id, Name: groupName(id)})
		}
		c.groups[cityID] = opts
	}

	return c, nil
}

// groupName turns "g3" into "Група 3".
func groupName(id string) string {
	if n, ok := strings.CutPrefix(id, "g"); ok && n != "" {
		return "Група " + n
	}
	return id
}

// Oblasts lists all oblasts in display order.
func (c *Catalog) Oblasts() []Option {
	return append([]Option(nil), c.oblasts...)
}

// Cities lists the cities of an oblast; unknown oblasts have none.
func (c *Catalog) Cities(oblastID string) []Option {
	return append([]Option(nil), c.cities[oblastID]...)
}

// Groups lists the groups of a city; unknown cities have none.
func (c *Catalog) Groups(cityID string) []Option {
	return append([]Option(nil), c.groups[cityID]...)
}

// CityNode is a city with its groups.
type CityNode struct {
	Option
	Groups []Option `json:"groups"`
}

// OblastNode is an oblast with its cities.
type OblastNode struct {
	Option
	Cities []CityNode `json:"cities"`
}

// Tree returns the whole hierarchy. Empty levels are empty slices, not nil.
func (c *Catalog) Tree() []OblastNode {
	tree := make([]OblastNode, 0, len(c.oblasts))
	for _, o := range c.oblasts {
		node := OblastNode{Option: o, Cities: make([]CityNode, 0, len(c.cities[o.ID]))}
		for _, city := range c.cities[o.ID] {
			groups := append(make([]Option, 0, len(c.groups[city.ID])), c.groups[city.ID]...)
			node.Cities = append(node.Cities, CityNode{Option: city, Groups: groups})
		}
		tree = append(tree, node)
	}
	return tree
}
