package engine

import (
	"strings"
)

// Policy is the configuration the engine consumes at construction: where channels
// operate, how purposes adjust fees and which currencies are accepted.
type Policy struct {
	Location            LocationPolicy
	PurposeAdjustments  map[string]float64
	SupportedCurrencies []string
}

// LocationPolicy restricts channel types to a set of cities. Types absent from
// RestrictedTypes are eligible everywhere.
type LocationPolicy struct {
	MajorCities     []string
	RestrictedTypes []ChannelType
}

func (lp LocationPolicy) Eligible(t ChannelType, location string) bool {
	restricted := false
	for _, rt := range lp.RestrictedTypes {
		if rt == t {
			restricted = true
			break
		}
	}
	if !restricted {
		return true
	}
	loc := strings.TrimSpace(location)
	for _, city := range lp.MajorCities {
		if strings.EqualFold(city, loc) {
			return true
		}
	}
	return false
}

var purposeAliases = map[string]string{
	"留学": PurposeStudy,
	"移民": PurposeImmigration,
	"投资": PurposeInvestment,
	"旅游": PurposeTravel,
}

const (
	PurposeStudy       = "study"
	PurposeImmigration = "immigration"
	PurposeInvestment  = "investment"
	PurposeTravel      = "travel"
)

// NormalizePurpose lower-cases a purpose and maps known aliases onto canonical names.
func NormalizePurpose(purpose string) string {
	p := strings.TrimSpace(purpose)
	if canonical, ok := purposeAliases[p]; ok {
		return canonical
	}
	return strings.ToLower(p)
}

func DefaultMajorCities() []string {
	return []string{"北京", "上海", "广州", "深圳", "杭州", "南京", "成都", "重庆", "武汉", "西安"}
}

func DefaultSupportedCurrencies() []string {
	return []string{"USD", "EUR", "GBP", "JPY", "CNY", "KRW", "AUD", "CAD", "CHF", "HKD", "SGD", "THB", "MYR", "VND", "PHP"}
}

func DefaultPolicy() Policy {
	return Policy{
		Location: LocationPolicy{
			MajorCities:     DefaultMajorCities(),
			RestrictedTypes: []ChannelType{Bank, Airport, ExchangeShop},
		},
		PurposeAdjustments: map[string]float64{
			PurposeStudy:       0.9,
			PurposeImmigration: 0.9,
			PurposeInvestment:  1.1,
		},
		SupportedCurrencies: DefaultSupportedCurrencies(),
	}
}

func (p Policy) validate() error {
	if len(p.SupportedCurrencies) == 0 {
		return &ConfigurationError{Subject: "policy", Reason: "no supported currencies"}
	}
	for purpose, m := range p.PurposeAdjustments {
		if m <= 0 {
			return &ConfigurationError{Subject: "policy", Reason: "purpose adjustment for " + purpose + " must be > 0"}
		}
	}
	for _, t := range p.Location.RestrictedTypes {
		if !t.Valid() {
			return &ConfigurationError{Subject: "policy", Reason: "unknown restricted channel type " + string(t)}
		}
	}
	return nil
}

func (p Policy) supports(code string) bool {
	for _, c := range p.SupportedCurrencies {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// purposeMultiplier returns 1.0 for purposes without an adjustment.
func (p Policy) purposeMultiplier(purpose string) float64 {
	if m, ok := p.PurposeAdjustments[NormalizePurpose(purpose)]; ok {
		return m
	}
	return 1.0
}
