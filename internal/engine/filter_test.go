package engine

import (
	"math/rand"
	"testing"
	"time"
)

func ids(channels []Channel) []string {
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ch.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	in2h := now.Add(2 * time.Hour)
	in10m := now.Add(10 * time.Minute)
	policy := DefaultPolicy().Location

	tests := []struct {
		name     string
		criteria FilterCriteria
		want     []string
	}{
		{
			name:     "digital in major city",
			criteria: FilterCriteria{Amount: 3000, Method: Digital, Location: "北京", Urgency: UrgencyMedium, Now: now},
			want:     []string{"major_bank", "online_bank", "atm_withdrawal"},
		},
		{
			name:     "cash in major city",
			criteria: FilterCriteria{Amount: 3000, Method: Cash, Location: "上海", Urgency: UrgencyMedium, Now: now},
			want:     []string{"major_bank", "airport_exchange", "exchange_shop", "atm_withdrawal"},
		},
		{
			name:     "cash outside major cities keeps only unrestricted types",
			criteria: FilterCriteria{Amount: 3000, Method: Cash, Location: "拉萨", Urgency: UrgencyMedium, Now: now},
			want:     []string{"atm_withdrawal"},
		},
		{
			name:     "amount above most limits",
			criteria: FilterCriteria{Amount: 60000, Method: Digital, Location: "北京", Urgency: UrgencyMedium, Now: now},
			want:     []string{"online_bank"},
		},
		{
			name:     "amount below every minimum",
			criteria: FilterCriteria{Amount: 20, Method: Digital, Location: "北京", Urgency: UrgencyMedium, Now: now},
			want:     nil,
		},
		{
			name:     "amount on bounds is inclusive",
			criteria: FilterCriteria{Amount: 5000, Method: Cash, Location: "北京", Urgency: UrgencyMedium, Now: now},
			want:     []string{"major_bank", "airport_exchange", "exchange_shop", "atm_withdrawal"},
		},
		{
			name:     "deadline excludes slow bank",
			criteria: FilterCriteria{Amount: 3000, Method: Digital, Location: "北京", Urgency: UrgencyMedium, Deadline: &in2h, Now: now},
			want:     []string{"online_bank", "atm_withdrawal"},
		},
		{
			name:     "high urgency bank fits two hours",
			criteria: FilterCriteria{Amount: 3000, Method: Digital, Location: "北京", Urgency: UrgencyHigh, Deadline: &in2h, Now: now},
			want:     []string{"major_bank", "online_bank", "atm_withdrawal"},
		},
		{
			name:     "tight deadline leaves instant channels",
			criteria: FilterCriteria{Amount: 3000, Method: Cash, Location: "北京", Urgency: UrgencyHigh, Deadline: &in10m, Now: now},
			want:     []string{"atm_withdrawal"},
		},
		{
			name:     "unknown method matches nothing",
			criteria: FilterCriteria{Amount: 3000, Method: "CHEQUE", Location: "北京", Urgency: UrgencyMedium, Now: now},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(DefaultChannels(), tt.criteria, policy))
			if !equalIDs(got, tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_LocationPolicyIsConfigurable(t *testing.T) {
	policy := LocationPolicy{MajorCities: []string{"Lisbon"}, RestrictedTypes: []ChannelType{Airport}}
	criteria := FilterCriteria{Amount: 1000, Method: Cash, Location: "Porto", Urgency: UrgencyLow, Now: time.Now()}

	got := ids(Filter(DefaultChannels(), criteria, policy))
	want := []string{"major_bank", "exchange_shop", "atm_withdrawal"}
	if !equalIDs(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}

	criteria.Location = "lisbon"
	got = ids(Filter(DefaultChannels(), criteria, policy))
	want = []string{"major_bank", "airport_exchange", "exchange_shop", "atm_withdrawal"}
	if !equalIDs(got, want) {
		t.Errorf("Filter() with case-insensitive city = %v, want %v", got, want)
	}
}

func randomChannel(rng *rand.Rand, i int) Channel {
	types := []ChannelType{Bank, Online, Airport, ExchangeShop, ATM}
	lo := rng.Float64() * 10000
	return Channel{
		ID:           string(rune('a' + i)),
		Type:         types[rng.Intn(len(types))],
		RateModifier: 0.98 + rng.Float64()*0.03,
		BaseFeeRate:  rng.Float64() * 3,
		Convenience:  1 + rng.Intn(5),
		Security:     1 + rng.Intn(5),
		Speed:        1 + rng.Intn(5),
		Availability: Availability{
			SupportsCash:    rng.Intn(2) == 0,
			SupportsDigital: rng.Intn(2) == 0,
			MinAmount:       lo,
			MaxAmount:       lo + rng.Float64()*50000,
		},
	}
}

func TestFilter_NeverViolatesAmountBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	policy := LocationPolicy{}

	for iter := 0; iter < 500; iter++ {
		channels := make([]Channel, 1+rng.Intn(8))
		for i := range channels {
			channels[i] = randomChannel(rng, i)
		}
		criteria := FilterCriteria{
			Amount:   rng.Float64() * 70000,
			Method:   []Method{Cash, Digital}[rng.Intn(2)],
			Location: "anywhere",
			Urgency:  UrgencyMedium,
			Now:      time.Now(),
		}

		for _, ch := range Filter(channels, criteria, policy) {
			if criteria.Amount < ch.Availability.MinAmount || criteria.Amount > ch.Availability.MaxAmount {
				t.Fatalf("iteration %d: channel %s [%v, %v] admitted amount %v",
					iter, ch.ID, ch.Availability.MinAmount, ch.Availability.MaxAmount, criteria.Amount)
			}
			if !methodSupported(ch, criteria.Method) {
				t.Fatalf("iteration %d: channel %s admitted unsupported method %s", iter, ch.ID, criteria.Method)
			}
		}
	}
}
