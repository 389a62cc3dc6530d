package economy

// TaxLaw selects how the state raises revenue.
type TaxLaw string

const (
	ConsumptionTax  TaxLaw = "consumption_tax"
	ProgressiveTax  TaxLaw = "progressive_tax"
	HeadTax         TaxLaw = "head_tax"
	ProportionalTax TaxLaw = "proportional_tax"
)

// MarketTaxCap is the highest per-resource market tax rate the law permits.
func (l TaxLaw) MarketTaxCap() float64 {
	switch l {
	case ConsumptionTax:
		return 0.20
	case ProgressiveTax:
		return 0.50
	}
	return 0
}

// EconomySystem modifies city money output.
type EconomySystem string

const (
	PlannedEconomy EconomySystem = "planned"
	LaissezFaire   EconomySystem = "laissez_faire"
	Cooperative    EconomySystem = "cooperative"
)

// GovStructure modifies civilization output.
type GovStructure string

const (
	Monarchy              GovStructure = "monarchy"
	PresidentialRepublic  GovStructure = "presidential_republic"
	ParliamentaryRepublic GovStructure = "parliamentary_republic"
)

// SpeechLaw modifies civilization and science output.
type SpeechLaw string

const (
	FreeSpeech      SpeechLaw = "free_speech"
	PressCensorship SpeechLaw = "press_censorship"
	IllegalDissent  SpeechLaw = "illegal_dissent"
)

// HealthLaw toggles public health insurance.
type HealthLaw string

const (
	NoPublicHealth  HealthLaw = "none"
	PublicInsurance HealthLaw = "public_insurance"
)

// EducationLaw toggles schooling.
type EducationLaw string

const (
	NoSchooling   EducationLaw = "none"
	PrivateSchool EducationLaw = "private_school"
	PublicSchool  EducationLaw = "public_school"
)

// SocialSecurityLaw selects the welfare programme.
type SocialSecurityLaw string

const (
	NoSocialSecurity SocialSecurityLaw = "none"
	PoorRelief       SocialSecurityLaw = "poor_relief"
	WageSubsidy      SocialSecurityLaw = "wage_subsidy"
	Pension          SocialSecurityLaw = "pension"
)

// Percent is the share of money income spent on the programme.
func (l SocialSecurityLaw) Percent() float64 {
	switch l {
	case PoorRelief:
		return 0.05
	case WageSubsidy:
		return 0.10
	case Pension:
		return 0.15
	}
	return 0
}

// Weights is how the programme's spending is split across classes.
func (l SocialSecurityLaw) Weights() ClassScores {
	switch l {
	case PoorRelief:
		return ClassScores{Labor: 2, Subsistence: 1}
	case WageSubsidy:
		return ClassScores{Expert: 2, Labor: 1}
	case Pension:
		return ClassScores{Elite: 1, Expert: 1, Labor: 1, Subsistence: 1}
	}
	return ClassScores{}
}

// ConscriptionLaw controls draft pressure on food.
type ConscriptionLaw string

const (
	VolunteerArmy    ConscriptionLaw = "volunteer"
	MassConscription ConscriptionLaw = "mass_conscription"
)

// Policies is one faction's active law set plus its fiscal dials.
type Policies struct {
	TaxLaw            TaxLaw            `json:"tax_law" toml:"tax_law"`
	EconomySystem     EconomySystem     `json:"economy_system" toml:"economy_system"`
	GovStructure      GovStructure      `json:"gov_structure" toml:"gov_structure"`
	SpeechLaw         SpeechLaw         `json:"speech_law" toml:"speech_law"`
	HealthLaw         HealthLaw         `json:"health_law" toml:"health_law"`
	EducationLaw      EducationLaw      `json:"education_law" toml:"education_law"`
	SocialSecurityLaw SocialSecurityLaw `json:"social_security_law" toml:"social_security_law"`
	ConscriptionLaw   ConscriptionLaw   `json:"conscription_law" toml:"conscription_law"`

	MarketTaxRates     map[Resource]float64 `json:"market_tax_rates" toml:"market_tax_rates"`           // 0–1 per tradable resource
	HeadTaxPerClass    ClassScores          `json:"head_tax_per_class" toml:"head_tax_per_class"`       // Money per capita
	SurplusTaxPerClass ClassScores          `json:"surplus_tax_per_class" toml:"surplus_tax_per_class"` // 0–1 of class income
	MintingAmount      int64                `json:"minting_amount" toml:"minting_amount"`               // Money printed per turn
}

// DefaultPolicies returns the starting law set.
func DefaultPolicies() Policies {
	return Policies{
		TaxLaw:             ConsumptionTax,
		EconomySystem:      PlannedEconomy,
		GovStructure:       Monarchy,
		SpeechLaw:          PressCensorship,
		HealthLaw:          NoPublicHealth,
		EducationLaw:       NoSchooling,
		SocialSecurityLaw:  NoSocialSecurity,
		ConscriptionLaw:    VolunteerArmy,
		MarketTaxRates:     map[Resource]float64{},
		HeadTaxPerClass:    ClassScores{},
		SurplusTaxPerClass: ClassScores{},
	}
}

// MarketTaxRate returns the effective market tax rate for r under the law cap.
func (p Policies) MarketTaxRate(r Resource) float64 {
	rate := clamp(p.MarketTaxRates[r], 0, 1)
	return clamp(rate, 0, p.TaxLaw.MarketTaxCap())
}

// PublicServicePercent is the extra income share spent on public health and schooling.
func (p Policies) PublicServicePercent() float64 {
	pct := 0.0
	if p.HealthLaw == PublicInsurance {
		pct += 0.03
	}
	if p.EducationLaw == PublicSchool {
		pct += 0.03
	}
	return pct
}

// ClassTaxRates resolves the per-class head levy and proportional rate that the
// current tax law actually applies. Head and proportional laws use one uniform
// rate (the highest configured among taxable classes); subsistence is exempt.
func (p Policies) ClassTaxRates() (head, proportional ClassScores) {
	head = ClassScores{}
	proportional = ClassScores{}
	taxable := []Class{Elite, Expert, Labor}

	switch p.TaxLaw {
	case ConsumptionTax:
		return head, proportional
	case HeadTax:
		uni := 0.0
		for _, c := range taxable {
			uni = max(uni, p.HeadTaxPerClass[c])
		}
		for _, c := range taxable {
			head[c] = uni
		}
	case ProportionalTax:
		uni := 0.0
		for _, c := range taxable {
			uni = max(uni, p.SurplusTaxPerClass[c])
		}
		for _, c := range taxable {
			proportional[c] = clamp(uni, 0, 1)
		}
	default:
		for _, c := range taxable {
			head[c] = max(0, p.HeadTaxPerClass[c])
			proportional[c] = clamp(p.SurplusTaxPerClass[c], 0, 1)
		}
	}
	return head, proportional
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
