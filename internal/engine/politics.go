// Class politics: satisfaction and power shares derived from the law set.
package engine

import (
	"math"

	"github.com/talgya/hexfront/internal/economy"
)

// Satisfaction model constants.
const (
	BaseSatisfaction    = 60
	OppositionUnit      = 3  // Satisfaction lost per point of opposition
	PopulationShareBump = 10 // Bonus for a class's share of the population
)

type opposition map[economy.Class]float64

var (
	taxOpposition = map[economy.TaxLaw]opposition{
		economy.HeadTax:         {economy.Labor: 3, economy.Subsistence: 3},
		economy.ProportionalTax: {economy.Elite: 3, economy.Expert: 2},
		economy.ProgressiveTax:  {economy.Elite: 2, economy.Expert: 2},
	}
	govOpposition = map[economy.GovStructure]opposition{
		economy.Monarchy:              {economy.Expert: 1, economy.Labor: 3},
		economy.PresidentialRepublic:  {economy.Elite: 2},
		economy.ParliamentaryRepublic: {economy.Elite: 3},
	}
	healthOpposition = map[economy.HealthLaw]opposition{
		economy.NoPublicHealth:  {economy.Labor: 1},
		economy.PublicInsurance: {economy.Elite: 1},
	}
	educationOpposition = map[economy.EducationLaw]opposition{
		economy.PrivateSchool: {economy.Labor: 2},
		economy.PublicSchool:  {economy.Elite: 1},
	}
	speechOpposition = map[economy.SpeechLaw]opposition{
		economy.PressCensorship: {economy.Elite: 1},
		economy.FreeSpeech:      {economy.Elite: 3},
	}
	welfareOpposition = map[economy.SocialSecurityLaw]opposition{
		economy.WageSubsidy: {economy.Elite: 2},
		economy.Pension:     {economy.Elite: 3, economy.Expert: 1},
	}
	draftOpposition = map[economy.ConscriptionLaw]opposition{
		economy.MassConscription: {economy.Subsistence: 2},
	}
)

// ClassSatisfaction scores each class's approval of a law set, 0–100.
// Repression amplifies grievances and free speech lets them vent.
func ClassSatisfaction(p economy.Policies, totals economy.ByClass) economy.ClassScores {
	factor := 1.0
	switch p.SpeechLaw {
	case economy.IllegalDissent:
		factor = 1.5
	case economy.FreeSpeech:
		factor = 0.5
	}

	sources := []opposition{
		taxOpposition[p.TaxLaw],
		govOpposition[p.GovStructure],
		healthOpposition[p.HealthLaw],
		educationOpposition[p.EducationLaw],
		draftOpposition[p.ConscriptionLaw],
		speechOpposition[p.SpeechLaw],
		welfareOpposition[p.SocialSecurityLaw],
	}

	sats := economy.ClassScores{}
	for _, c := range economy.Classes {
		s := float64(BaseSatisfaction)
		for _, opp := range sources {
			s -= math.Floor(opp[c]*factor) * OppositionUnit
		}
		sats[c] = clampScore(s)
	}

	bonus := func(amount float64, classes ...economy.Class) {
		for _, c := range classes {
			sats[c] = math.Min(100, sats[c]+amount)
		}
	}
	if p.HealthLaw == economy.PublicInsurance {
		bonus(20, economy.Classes[:]...)
	}
	switch p.SocialSecurityLaw {
	case economy.WageSubsidy:
		bonus(10, economy.Expert, economy.Labor, economy.Subsistence)
	case economy.Pension:
		bonus(10, economy.Classes[:]...)
	}
	if p.EducationLaw == economy.PublicSchool {
		bonus(5, economy.Expert, economy.Labor)
	}

	sum := float64(max(1, totals.Total()))
	for _, c := range economy.Classes {
		share := clamp01(float64(max(0, totals[c])) / sum)
		sats[c] = clampScore(math.Floor(sats[c] + share*PopulationShareBump))
	}
	return sats
}

// PowerShares splits political power by population weighted per class.
// Government structure and poor relief shift the weights. All zeros when
// nobody lives in the faction.
func PowerShares(p economy.Policies, totals economy.ByClass) economy.ClassScores {
	w := economy.ClassScores{}
	for c, v := range economy.DefaultSurplusWeights {
		w[c] = v
	}
	switch p.GovStructure {
	case economy.Monarchy:
		w[economy.Elite] *= 1.5
	case economy.ParliamentaryRepublic:
		w[economy.Expert] *= 1.5
		w[economy.Labor] *= 1.5
	}
	if p.SocialSecurityLaw == economy.PoorRelief {
		w[economy.Labor] *= 0.75
		w[economy.Subsistence] *= 0.5
	}

	out := economy.ClassScores{}
	sum := 0.0
	for _, c := range economy.Classes {
		out[c] = float64(max(0, totals[c])) * w[c]
		sum += out[c]
	}
	for _, c := range economy.Classes {
		if sum <= 0 {
			out[c] = 0
			continue
		}
		out[c] /= sum
	}
	return out
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
