package catalog

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/talgya/hexfront/internal/economy"
)

// Default returns a fresh catalog with the built-in registries.
func Default() *Catalog {
	return &Catalog{
		Buildings: defaultBuildings(),
		Regiments: defaultRegiments(),
		Techs:     defaultTechs(),
	}
}

// Load returns the default catalog with any entries in the TOML file at path
// layered on top. Entries replace defaults whole; new ids are added. An empty
// path returns the defaults.
//
//	[buildings.farm]
//	name = "Farm"
//	yields = { food = 20, consumer = -2, energy = -2 }
//	cost = { money = 300, pop = 30 }
func Load(path string) (*Catalog, error) {
	cat := Default()
	if path == "" {
		return cat, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var over Catalog
	if err := toml.NewDecoder(f).Decode(&over); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	if err := cat.merge(&over); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	slog.Info("catalog overrides loaded",
		"path", path,
		"buildings", len(over.Buildings),
		"regiments", len(over.Regiments),
		"techs", len(over.Techs),
	)
	return cat, nil
}

func (c *Catalog) merge(over *Catalog) error {
	for id, b := range over.Buildings {
		if b == nil {
			continue
		}
		for r := range b.Yields {
			if _, ok := economy.ParseResource(string(r)); !ok {
				return fmt.Errorf("building %s: unknown resource %q", id, r)
			}
		}
		if b.EnergyCapRef != "" && c.Buildings[b.EnergyCapRef] == nil && over.Buildings[b.EnergyCapRef] == nil {
			slog.Warn("energy cap reference not in catalog, output uncapped", "building", id, "ref", b.EnergyCapRef)
		}
		b.ID = id
		c.Buildings[id] = b
	}
	for id, r := range over.Regiments {
		if r == nil {
			continue
		}
		r.ID = id
		c.Regiments[id] = r
	}
	for key, t := range over.Techs {
		if t == nil {
			continue
		}
		t.Key = key
		c.Techs[key] = t
	}
	return nil
}
