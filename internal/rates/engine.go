package rates

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// TroyOunceGrams is the mass of one troy ounce in grams.
const TroyOunceGrams = 31.1034768

// MetalPrices holds derived prices in the snapshot's base currency.
// A metal missing from the maps is unavailable.
type MetalPrices struct {
	OuncePriceByMetal map[Code]float64
	GramPriceByMetal  map[Code]float64
}

// Ounce returns the price of one troy ounce of metal.
func (p MetalPrices) Ounce(metal Code) (float64, bool) {
	v, ok := p.OuncePriceByMetal[metal]
	return v, ok
}

// Gram returns the price of one gram of metal.
func (p MetalPrices) Gram(metal Code) (float64, bool) {
	v, ok := p.GramPriceByMetal[metal]
	return v, ok
}

// DeriveMetalPrices computes per-ounce and per-gram prices for every tracked
// metal with a nonzero rate. Upstream quotes metals as fractional ounces per
// unit of base, so the ounce price is the reciprocal of the rate.
// A non-positive gramsPerTroyOunce selects TroyOunceGrams.
func DeriveMetalPrices(s Snapshot, gramsPerTroyOunce float64) MetalPrices {
	if gramsPerTroyOunce <= 0 || !isFinite(gramsPerTroyOunce) {
		gramsPerTroyOunce = TroyOunceGrams
	}

	out := MetalPrices{
		OuncePriceByMetal: make(map[Code]float64, len(TrackedMetals)),
		GramPriceByMetal:  make(map[Code]float64, len(TrackedMetals)),
	}
	for _, metal := range TrackedMetals {
		r, ok := s.Rate(metal)
		if !ok || r == 0 {
			continue
		}
		ounce := 1 / r
		if !isFinite(ounce) {
			continue
		}
		out.OuncePriceByMetal[metal] = ounce
		out.GramPriceByMetal[metal] = ounce / gramsPerTroyOunce
	}
	return out
}

// amountPrefix is the plain decimal grammar accepted at the start of an amount.
var amountPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount parses user-entered amount text. Leading whitespace is skipped
// and the longest decimal prefix is read, so "12abc" is 12 and "0x1p4" is 0.
// It reports false when there is no such prefix or the value is not finite.
func ParseAmount(text string) (float64, bool) {
	num := amountPrefix.FindString(strings.TrimLeftFunc(text, unicode.IsSpace))
	if num == "" {
		return 0, false
	}
	a, err := strconv.ParseFloat(num, 64)
	if err != nil || !isFinite(a) {
		return 0, false
	}
	return a, true
}

// Convert converts the amount text from one code to another through the
// snapshot's base. Unparseable amounts and unknown codes yield 0.
func Convert(s Snapshot, amount string, from, to Code) float64 {
	a, ok := ParseAmount(amount)
	if !ok {
		return 0
	}
	return ConvertAmount(s, a, from, to)
}

// ConvertAmount is Convert for an already parsed amount.
func ConvertAmount(s Snapshot, amount float64, from, to Code) float64 {
	if !isFinite(amount) {
		return 0
	}
	rFrom, ok := s.Rate(from)
	if !ok || rFrom == 0 {
		return 0
	}
	rTo, ok := s.Rate(to)
	if !ok {
		return 0
	}

	inBase := amount / rFrom
	result := inBase * rTo
	if !isFinite(result) {
		return 0
	}
	return result
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
