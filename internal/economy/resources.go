// Package economy provides the resource, class, and policy vocabulary of the
// turn economy, plus the pure pricing and apportionment math shared by the
// resolution pipeline.
package economy

import "sort"

// Resource names one stockpiled or flowing quantity.
type Resource string

const (
	Money        Resource = "money"
	Food         Resource = "food"
	Metal        Resource = "metal"
	Precious     Resource = "precious"
	Consumer     Resource = "consumer"
	Energy       Resource = "energy"
	Oil          Resource = "oil"
	Fuel         Resource = "fuel"
	Industry     Resource = "industry"
	Pop          Resource = "pop"
	Science      Resource = "science"
	Civilization Resource = "civilization"
)

// AllResources lists every resource in display order.
var AllResources = []Resource{
	Money, Food, Metal, Precious, Consumer, Energy, Oil,
	Fuel, Industry, Pop, Science, Civilization,
}

// TradableResources are market flows: priced, throttled, zeroed every turn.
var TradableResources = []Resource{Food, Metal, Precious, Consumer, Energy, Oil}

// BasePrices are the unit prices before supply/demand pressure and inflation.
var BasePrices = map[Resource]float64{
	Food:     1,
	Metal:    2,
	Precious: 6,
	Consumer: 2,
	Energy:   2,
	Oil:      4,
}

// Tradable reports whether r is a market flow.
func (r Resource) Tradable() bool {
	switch r {
	case Food, Metal, Precious, Consumer, Energy, Oil:
		return true
	}
	return false
}

// ParseResource resolves a resource name.
func ParseResource(s string) (Resource, bool) {
	for _, r := range AllResources {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Stockpile maps resources to integer amounts. Missing keys read as zero.
type Stockpile map[Resource]int64

// NewStockpile returns a stockpile with every resource present at zero.
func NewStockpile() Stockpile {
	s := make(Stockpile, len(AllResources))
	for _, r := range AllResources {
		s[r] = 0
	}
	return s
}

// Clone returns an independent copy.
func (s Stockpile) Clone() Stockpile {
	out := make(Stockpile, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Add adds delta to r, flooring the result at zero.
func (s Stockpile) Add(r Resource, delta int64) {
	next := s[r] + delta
	if next < 0 {
		next = 0
	}
	s[r] = next
}

// Keys returns the stockpile's resources sorted by name.
func (s Stockpile) Keys() []Resource {
	keys := make([]Resource, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
