// Package catalog holds the read-only registries the economy consumes:
// building definitions, regiment types, and research trees. Defaults are
// compiled in and may be overridden from a TOML file at startup.
package catalog

import "sort"

// Catalog is the full set of registries for one game.
type Catalog struct {
	Buildings map[string]*BuildingDefinition `json:"buildings" toml:"buildings"`
	Regiments map[string]*RegimentType       `json:"regiments" toml:"regiments"`
	Techs     map[string]*TechCategory       `json:"techs" toml:"techs"`
}

// Building returns the definition for id, or nil when unknown.
func (c *Catalog) Building(id string) *BuildingDefinition {
	if c == nil || id == "" {
		return nil
	}
	return c.Buildings[id]
}

// Regiment returns the regiment type for id, or nil when unknown.
func (c *Catalog) Regiment(id string) *RegimentType {
	if c == nil {
		return nil
	}
	return c.Regiments[id]
}

// TechCategory returns the research tree keyed by key, or nil.
func (c *Catalog) TechCategory(key string) *TechCategory {
	if c == nil {
		return nil
	}
	return c.Techs[key]
}

// FindTech locates a research step by id across every tree.
func (c *Catalog) FindTech(id string) (*TechCategory, int, bool) {
	if c == nil {
		return nil, -1, false
	}
	for _, key := range c.TechKeys() {
		cat := c.Techs[key]
		for i, s := range cat.Steps {
			if s.ID == id {
				return cat, i, true
			}
		}
	}
	return nil, -1, false
}

// BuildingIDs returns building ids in sorted order.
func (c *Catalog) BuildingIDs() []string {
	ids := make([]string, 0, len(c.Buildings))
	for id := range c.Buildings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TechKeys returns research tree keys in sorted order.
func (c *Catalog) TechKeys() []string {
	keys := make([]string, 0, len(c.Techs))
	for k := range c.Techs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
