package economy

// Class is one of the four population strata.
type Class string

const (
	Elite       Class = "elite"
	Expert      Class = "expert"
	Labor       Class = "labor"
	Subsistence Class = "subsistence"
)

// Classes lists the strata in canonical order. Ties in apportionment resolve
// in this order.
var Classes = [4]Class{Elite, Expert, Labor, Subsistence}

// Valid reports whether c names one of the four strata.
func (c Class) Valid() bool {
	switch c {
	case Elite, Expert, Labor, Subsistence:
		return true
	}
	return false
}

// ByClass holds an integer amount per class (population, surplus, tax).
type ByClass map[Class]int64

// NewByClass returns a ByClass with all four classes present at zero.
func NewByClass() ByClass {
	return ByClass{Elite: 0, Expert: 0, Labor: 0, Subsistence: 0}
}

// Total sums the four classes.
func (b ByClass) Total() int64 {
	var t int64
	for _, c := range Classes {
		t += b[c]
	}
	return t
}

// Clone returns an independent copy with all four classes present.
func (b ByClass) Clone() ByClass {
	out := NewByClass()
	for _, c := range Classes {
		out[c] = b[c]
	}
	return out
}

// ClassScores holds a real value per class (satisfaction, shares, weights).
type ClassScores map[Class]float64

// DefaultSurplusWeights weight each class's claim on the taxed surplus.
var DefaultSurplusWeights = ClassScores{Elite: 3, Expert: 2, Labor: 1, Subsistence: 0.5}

// BaselineClassMix is the class composition of a fresh district.
var BaselineClassMix = ClassScores{Elite: 0.01, Expert: 0.09, Labor: 0.2, Subsistence: 0.7}

// EqualShares gives every class a quarter.
func EqualShares() ClassScores {
	return ClassScores{Elite: 0.25, Expert: 0.25, Labor: 0.25, Subsistence: 0.25}
}
