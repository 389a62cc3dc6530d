package economy

// ResourceMarket is the cleared state of one tradable resource for one faction.
type ResourceMarket struct {
	Supply        int64   `json:"supply"`
	Demand        int64   `json:"demand"`
	StateSupply   int64   `json:"state_supply"`
	PrivateSupply int64   `json:"private_supply"`
	StateDemand   int64   `json:"state_demand"`
	PrivateDemand int64   `json:"private_demand"`
	Ratio         float64 `json:"ratio"`    // Pass-1 supply/demand
	Throttle      float64 `json:"throttle"` // g(Ratio)
	Price         int64   `json:"price"`
	TaxRate       float64 `json:"tax_rate"`
	Revenue       float64 `json:"revenue"`
	Profit        float64 `json:"profit"`
	TaxedProfit   float64 `json:"taxed_profit"`
	TaxIncome     float64 `json:"tax_income"`
}

// MarketSnapshot is one faction's fully recomputed market for a turn.
// It is derived data and never carried from one turn to the next.
type MarketSnapshot struct {
	Resources map[Resource]*ResourceMarket `json:"resources"`

	OperatingCost        int64   `json:"operating_cost"`
	PrivateOperatingCost int64   `json:"private_operating_cost"`
	MilitaryCost         int64   `json:"military_cost"`
	SocialSecurityCost   int64   `json:"social_security_cost"`
	TaxIncome            int64   `json:"tax_income"`
	TaxedProfitTotal     float64 `json:"taxed_profit_total"`

	ClassMultiplier       float64 `json:"class_multiplier"`
	TotalSurplus          int64   `json:"total_surplus"`
	SurplusDelta          ByClass `json:"surplus_delta"`       // After private maintenance
	PrivateMaintenance    ByClass `json:"private_maintenance"` // Input purchases by class
	SocialSecuritySubsidy ByClass `json:"social_security_subsidy"`

	HeadTaxCollected         ByClass `json:"head_tax_collected"`
	ProportionalTaxCollected ByClass `json:"proportional_tax_collected"`

	BuildPowerMax int64 `json:"build_power_max"`
}

// NewMarketSnapshot returns an empty snapshot with every tradable resource present.
func NewMarketSnapshot() *MarketSnapshot {
	res := make(map[Resource]*ResourceMarket, len(TradableResources))
	for _, r := range TradableResources {
		res[r] = &ResourceMarket{Throttle: 1}
	}
	return &MarketSnapshot{
		Resources:                res,
		SurplusDelta:             NewByClass(),
		PrivateMaintenance:       NewByClass(),
		SocialSecuritySubsidy:    NewByClass(),
		HeadTaxCollected:         NewByClass(),
		ProportionalTaxCollected: NewByClass(),
	}
}

// Throttle returns the published throttle factor for r, 1 for non-tradables.
func (m *MarketSnapshot) Throttle(r Resource) float64 {
	if m == nil {
		return 1
	}
	if rm, ok := m.Resources[r]; ok {
		return rm.Throttle
	}
	return 1
}

// PriceOf returns the cleared price for r, 0 for non-tradables.
func (m *MarketSnapshot) PriceOf(r Resource) int64 {
	if m == nil {
		return 0
	}
	if rm, ok := m.Resources[r]; ok {
		return rm.Price
	}
	return 0
}

// Clone returns a deep copy, safe to hand to readers outside the turn lock.
func (m *MarketSnapshot) Clone() *MarketSnapshot {
	if m == nil {
		return nil
	}
	out := *m
	out.Resources = make(map[Resource]*ResourceMarket, len(m.Resources))
	for r, rm := range m.Resources {
		cp := *rm
		out.Resources[r] = &cp
	}
	out.SurplusDelta = m.SurplusDelta.Clone()
	out.PrivateMaintenance = m.PrivateMaintenance.Clone()
	out.SocialSecuritySubsidy = m.SocialSecuritySubsidy.Clone()
	out.HeadTaxCollected = m.HeadTaxCollected.Clone()
	out.ProportionalTaxCollected = m.ProportionalTaxCollected.Clone()
	return &out
}

// Ledger is the per-turn record of one faction's economy.
type Ledger struct {
	Turn          uint64          `json:"turn"`
	Resources     Stockpile       `json:"resources"`
	Deltas        Stockpile       `json:"deltas"`
	Market        *MarketSnapshot `json:"market"`
	BuildPowerMax int64           `json:"build_power_max"`
	Stability     int             `json:"stability"`
}
