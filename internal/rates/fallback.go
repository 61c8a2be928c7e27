package rates

import (
	"strings"
)

const DefaultFallbackRate = 1.0

// FallbackTable is a static rate table keyed by concatenated pair codes, e.g. "USDCNY".
type FallbackTable struct {
	Rates       map[string]float64
	DefaultRate float64
}

func DefaultFallbackTable() FallbackTable {
	return FallbackTable{
		Rates: map[string]float64{
			"USDCNY": 7.2345,
			"EURCNY": 7.8901,
			"GBPCNY": 9.1234,
			"JPYCNY": 0.0489,
			"CNYJPY": 20.45,
			"CNYSGD": 5.20,
			"CNYHKD": 0.92,
			"CNYKRW": 185.67,
			"CNYTHB": 0.197,
			"CNYMYR": 1.58,
		},
		DefaultRate: DefaultFallbackRate,
	}
}

// Lookup tries the direct pair, then inverts the reverse pair. When neither exists
// it returns the default rate and false.
func (t FallbackTable) Lookup(from, to string) (float64, bool) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	if r, ok := t.Rates[from+to]; ok && r > 0 {
		return r, true
	}
	if r, ok := t.Rates[to+from]; ok && r > 0 {
		return 1.0 / r, true
	}

	if t.DefaultRate > 0 {
		return t.DefaultRate, false
	}
	return DefaultFallbackRate, false
}
