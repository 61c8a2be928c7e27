package market

import (
	"context"
	"testing"
)

func TestNeutralSignal(t *testing.T) {
	c, err := NeutralSignal{}.Conditions(context.Background(), "USD", "CNY")
	if err != nil {
		t.Fatalf("Conditions() error = %v", err)
	}
	if c.Trend != Neutral || c.Liquidity != LiquidityHigh || c.Volatility != 1.0 {
		t.Errorf("Conditions() = %+v", c)
	}
}

func TestSeededSignal_Reproducible(t *testing.T) {
	a := NewSeededSignal(42)
	b := NewSeededSignal(42)

	tests := []struct {
		from, to string
	}{
		{"USD", "CNY"},
		{"EUR", "JPY"},
		{"gbp", "hkd"},
	}

	for _, tt := range tests {
		t.Run(tt.from+tt.to, func(t *testing.T) {
			first, err := a.Conditions(context.Background(), tt.from, tt.to)
			if err != nil {
				t.Fatalf("Conditions() error = %v", err)
			}
			second, _ := b.Conditions(context.Background(), tt.from, tt.to)
			if first != second {
				t.Errorf("same seed gave %+v and %+v", first, second)
			}
			if first.Volatility < MinVolatility || first.Volatility > MaxVolatility {
				t.Errorf("volatility %v outside [%v, %v]", first.Volatility, MinVolatility, MaxVolatility)
			}
		})
	}
}

func TestSeededSignal_CaseInsensitivePair(t *testing.T) {
	s := NewSeededSignal(7)
	upper, _ := s.Conditions(context.Background(), "USD", "CNY")
	lower, _ := s.Conditions(context.Background(), "usd", "cny")
	if upper != lower {
		t.Errorf("%+v != %+v", upper, lower)
	}
}

func TestSeededSignal_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSeededSignal(1).Conditions(ctx, "USD", "CNY"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
