package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func scenarioSnapshot() Snapshot {
	return NewSnapshot("USD", map[Code]float64{
		"XAU": 0.00045,
		"USD": 1,
		"INR": 84.1,
	}, 1700000000)
}

func TestDeriveMetalPrices(t *testing.T) {
	t.Run("reciprocal of rate per ounce and per gram", func(t *testing.T) {
		for _, r := range []float64{0.00045, 0.038, 1, 2.5, 1e-6} {
			s := NewSnapshot("USD", map[Code]float64{"XAU": r, "XAG": r}, 0)
			prices := DeriveMetalPrices(s, TroyOunceGrams)

			ounce, ok := prices.Ounce(Gold)
			require.True(t, ok)
			assert.InDelta(t, 1/r, ounce, tolerance)

			gram, ok := prices.Gram(Gold)
			require.True(t, ok)
			assert.InDelta(t, (1/r)/31.1034768, gram, tolerance)
		}
	})

	t.Run("scenario", func(t *testing.T) {
		prices := DeriveMetalPrices(scenarioSnapshot(), TroyOunceGrams)

		ounce, ok := prices.Ounce(Gold)
		require.True(t, ok)
		assert.InDelta(t, 2222.22, ounce, 0.01)

		gram, ok := prices.Gram(Gold)
		require.True(t, ok)
		assert.InDelta(t, 71.45, gram, 0.01)
	})

	t.Run("missing metal is unavailable", func(t *testing.T) {
		prices := DeriveMetalPrices(scenarioSnapshot(), TroyOunceGrams)

		_, ok := prices.Ounce(Silver)
		assert.False(t, ok)
		_, ok = prices.Gram(Silver)
		assert.False(t, ok)
		assert.NotContains(t, prices.OuncePriceByMetal, Silver)
	})

	t.Run("zero rate is unavailable, not zero", func(t *testing.T) {
		s := NewSnapshot("USD", map[Code]float64{"XAU": 0, "XAG": 0.038}, 0)
		prices := DeriveMetalPrices(s, TroyOunceGrams)

		_, ok := prices.Ounce(Gold)
		assert.False(t, ok)
		_, ok = prices.Gram(Gold)
		assert.False(t, ok)

		_, ok = prices.Ounce(Silver)
		assert.True(t, ok)
	})

	t.Run("non-positive factor falls back to troy ounce", func(t *testing.T) {
		a := DeriveMetalPrices(scenarioSnapshot(), 0)
		b := DeriveMetalPrices(scenarioSnapshot(), TroyOunceGrams)
		assert.Equal(t, b, a)
	})

	t.Run("deterministic", func(t *testing.T) {
		s := MockSnapshot("USD", 1)
		assert.Equal(t, DeriveMetalPrices(s, TroyOunceGrams), DeriveMetalPrices(s, TroyOunceGrams))
	})
}

func TestConvert(t *testing.T) {
	s := scenarioSnapshot()

	t.Run("scenario", func(t *testing.T) {
		assert.InDelta(t, 8410.00, Convert(s, "100", "USD", "INR"), 1e-6)
		assert.InDelta(t, 1.189, Convert(s, "100", "INR", "USD"), 0.001)
	})

	t.Run("identity", func(t *testing.T) {
		m := MockSnapshot("USD", 0)
		for code := range m.Rates {
			for _, x := range []float64{0, 1, -3.5, 1234.5678, 1e-9} {
				assert.InDelta(t, x, ConvertAmount(m, x, code, code), tolerance, "code %s amount %v", code, x)
			}
		}
	})

	t.Run("composition", func(t *testing.T) {
		m := MockSnapshot("USD", 0)
		codes := []Code{"USD", "EUR", "INR", "JPY", "XAU", "CHF"}
		for _, a := range codes {
			for _, b := range codes {
				for _, c := range codes {
					direct := ConvertAmount(m, 250, a, c)
					viaB := ConvertAmount(m, ConvertAmount(m, 250, a, b), b, c)
					assert.InEpsilon(t, direct, viaB, 1e-9, "%s->%s->%s", a, b, c)
				}
			}
		}
	})

	t.Run("invalid amount yields zero", func(t *testing.T) {
		for _, text := range []string{"abc", "", "NaN", "Inf", "-Infinity", "1e400", "0x1p4", "."} {
			assert.Zero(t, Convert(s, text, "USD", "INR"), "amount %q", text)
		}
	})

	t.Run("trailing text after a number is ignored", func(t *testing.T) {
		assert.InDelta(t, 12*84.1, Convert(s, "12abc", "USD", "INR"), tolerance)
		assert.InDelta(t, 84.1, Convert(s, "1_0", "USD", "INR"), tolerance)
	})

	t.Run("amount with surrounding whitespace parses", func(t *testing.T) {
		assert.InDelta(t, 84.1, Convert(s, " 1 ", "USD", "INR"), tolerance)
	})

	t.Run("unknown code yields zero", func(t *testing.T) {
		assert.Zero(t, Convert(s, "100", "USD", "EUR"))
		assert.Zero(t, Convert(s, "100", "EUR", "USD"))
		assert.Zero(t, Convert(s, "100", "usd", "INR"))
	})

	t.Run("zero source rate yields zero", func(t *testing.T) {
		z := NewSnapshot("USD", map[Code]float64{"USD": 1, "BAD": 0}, 0)
		assert.Zero(t, Convert(z, "10", "BAD", "USD"))
	})

	t.Run("base need not be one", func(t *testing.T) {
		odd := NewSnapshot("USD", map[Code]float64{"USD": 2, "EUR": 4}, 0)
		assert.InDelta(t, 20.0, Convert(odd, "10", "USD", "EUR"), tolerance)
	})
}

func TestNewSnapshot_CopiesRates(t *testing.T) {
	src := map[Code]float64{"USD": 1}
	s := NewSnapshot("USD", src, 0)
	src["USD"] = 2

	r, ok := s.Rate("USD")
	require.True(t, ok)
	assert.Equal(t, 1.0, r)
}

func TestMockSnapshot(t *testing.T) {
	s := MockSnapshot("EUR", 42)

	assert.Equal(t, Code("EUR"), s.Base)
	assert.Equal(t, int64(42), s.Timestamp)
	assert.Equal(t, 0.00045, s.Rates[Gold])
	assert.Equal(t, 0.038, s.Rates[Silver])
	for _, c := range PopularCurrencies {
		assert.Contains(t, s.Rates, c)
	}

	s.Rates["USD"] = 99
	assert.Equal(t, 1.0, MockSnapshot("USD", 0).Rates["USD"])
}

func TestParseAmount(t *testing.T) {
	a, ok := ParseAmount("2.5")
	assert.True(t, ok)
	assert.Equal(t, 2.5, a)

	_, ok = ParseAmount("NaN")
	assert.False(t, ok)

	valid := map[string]float64{
		" 42 ":  42,
		"12abc": 12,
		"1_0":   1,
		"0x1p4": 0,
		"1e3x":  1000,
		"1e":    1,
		".5":    0.5,
		"5.":    5,
		"-3.25": -3.25,
		"+7":    7,
		"\t\n9": 9,
	}
	for text, want := range valid {
		a, ok := ParseAmount(text)
		assert.True(t, ok, "amount %q", text)
		assert.Equal(t, want, a, "amount %q", text)
	}

	for _, text := range []string{"", " ", ".", "-", "+.", "abc", "Infinity", "-Infinity", "1e400", "x12"} {
		_, ok := ParseAmount(text)
		assert.False(t, ok, "amount %q", text)
	}
}
