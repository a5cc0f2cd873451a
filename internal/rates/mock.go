package rates

// PopularCurrencies are the currencies offered as base and conversion choices.
var PopularCurrencies = []Code{"USD", "INR", "EUR", "GBP", "AED", "AUD", "CAD", "JPY", "CNY", "SGD", "CHF"}

var mockRates = map[Code]float64{
	Gold:   0.00045,
	Silver: 0.038,
	"USD":  1,
	"EUR":  0.92,
	"INR":  84.1,
	"GBP":  0.78,
	"AED":  3.67,
	"AUD":  1.48,
	"CAD":  1.36,
	"JPY":  144.6,
	"CNY":  7.2,
	"SGD":  1.34,
	"CHF":  0.88,
}

// MockSnapshot returns the fixed illustrative rate table stamped with base and
// timestamp. The values do not change with base.
func MockSnapshot(base Code, timestamp int64) Snapshot {
	return NewSnapshot(base, mockRates, timestamp)
}
