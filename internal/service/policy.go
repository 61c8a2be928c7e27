package service

import (
	"strings"

	"github.com/omerorhan/fx-advisor/internal/engine"
	"github.com/omerorhan/fx-advisor/internal/rates"
)

// PolicyConfig is the engine policy in plain values. Nil fields keep the defaults;
// an empty, non-nil RestrictedTypes makes every channel type eligible everywhere.
type PolicyConfig struct {
	MajorCities         []string           `json:"majorCities"`
	RestrictedTypes     []string           `json:"restrictedTypes"`
	PurposeAdjustments  map[string]float64 `json:"purposeAdjustments"`
	SupportedCurrencies []string           `json:"supportedCurrencies"`
}

func (pc PolicyConfig) policy() engine.Policy {
	p := engine.DefaultPolicy()

	if pc.MajorCities != nil {
		p.Location.MajorCities = append([]string(nil), pc.MajorCities...)
	}
	if pc.RestrictedTypes != nil {
		types := make([]engine.ChannelType, 0, len(pc.RestrictedTypes))
		for _, t := range pc.RestrictedTypes {
			types = append(types, engine.ChannelType(strings.ToUpper(strings.TrimSpace(t))))
		}
		p.Location.RestrictedTypes = types
	}
	if pc.PurposeAdjustments != nil {
		adjustments := make(map[string]float64, len(pc.PurposeAdjustments))
		for purpose, m := range pc.PurposeAdjustments {
			adjustments[engine.NormalizePurpose(purpose)] = m
		}
		p.PurposeAdjustments = adjustments
	}
	if pc.SupportedCurrencies != nil {
		codes := make([]string, 0, len(pc.SupportedCurrencies))
		for _, c := range pc.SupportedCurrencies {
			codes = append(codes, strings.ToUpper(strings.TrimSpace(c)))
		}
		p.SupportedCurrencies = codes
	}
	return p
}

// fallbackTable keys rates by upper-cased pair ("USDCNY"); "USD/CNY" is accepted too.
func fallbackTable(pairRates map[string]float64) rates.FallbackTable {
	t := rates.FallbackTable{
		Rates:       make(map[string]float64, len(pairRates)),
		DefaultRate: rates.DefaultFallbackRate,
	}
	for pair, r := range pairRates {
		key := strings.ToUpper(strings.NewReplacer("/", "", "-", "", " ", "").Replace(pair))
		t.Rates[key] = r
	}
	return t
}

// policyOptions turns the configured tables into engine options.
func policyOptions(opts *ServiceOptions) []engine.Option {
	var out []engine.Option
	if opts.Policy != nil {
		out = append(out, engine.WithPolicy(opts.Policy.policy()))
	}
	if len(opts.FallbackRates) > 0 {
		out = append(out, engine.WithFallbackTable(fallbackTable(opts.FallbackRates)))
	}
	return out
}
