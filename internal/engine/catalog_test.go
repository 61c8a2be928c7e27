package engine

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Len() != 5 {
		t.Fatalf("default catalog size = %d, want 5", c.Len())
	}

	want := []string{"major_bank", "online_bank", "airport_exchange", "exchange_shop", "atm_withdrawal"}
	for i, ch := range c.List() {
		if ch.ID != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, ch.ID, want[i])
		}
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	valid := func() Channel {
		return Channel{
			ID: "c1", Name: "c1", Type: Bank, RateModifier: 1, BaseFeeRate: 0.5,
			Convenience: 3, Security: 3, Speed: 3,
			Availability: Availability{SupportsCash: true, MinAmount: 10, MaxAmount: 100},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Channel)
		extra  []Channel
	}{
		{name: "min above max", mutate: func(c *Channel) { c.Availability.MinAmount = 1000 }},
		{name: "negative fee", mutate: func(c *Channel) { c.BaseFeeRate = -0.1 }},
		{name: "zero modifier", mutate: func(c *Channel) { c.RateModifier = 0 }},
		{name: "rating below range", mutate: func(c *Channel) { c.Convenience = 0 }},
		{name: "rating above range", mutate: func(c *Channel) { c.Security = 6 }},
		{name: "unknown type", mutate: func(c *Channel) { c.Type = "KIOSK" }},
		{name: "empty id", mutate: func(c *Channel) { c.ID = "" }},
		{name: "negative processing time", mutate: func(c *Channel) {
			c.ProcessingTime = map[Urgency]time.Duration{UrgencyLow: -time.Minute}
		}},
		{name: "duplicate id", mutate: func(c *Channel) {}, extra: []Channel{valid()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := valid()
			tt.mutate(&ch)
			_, err := NewCatalog(append([]Channel{ch}, tt.extra...))

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %v", err)
			}
		})
	}

	if _, err := NewCatalog(nil); err == nil {
		t.Error("expected error for empty catalog")
	}
}

func TestCatalog_Get(t *testing.T) {
	c := DefaultCatalog()

	ch, err := c.Get("online_bank")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ch.Type != Online || ch.BaseFeeRate != 0.3 {
		t.Errorf("unexpected channel %+v", ch)
	}

	if _, err := c.Get("nope"); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("expected ErrChannelNotFound, got %v", err)
	}
}

func TestCatalog_Immutable(t *testing.T) {
	source := DefaultChannels()
	c, err := NewCatalog(source)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	// Mutating the input after construction
	source[0].BaseFeeRate = 9
	source[0].ProcessingTime[UrgencyLow] = 0

	// Mutating a returned copy
	got := c.List()
	got[0].Convenience = 1
	got[0].ProcessingTime[UrgencyMedium] = 0

	again, _ := c.Get("major_bank")
	if again.BaseFeeRate != 0.5 || again.Convenience != 3 {
		t.Errorf("catalog channel was mutated: %+v", again)
	}
	if again.Processing(UrgencyLow) != 48*time.Hour || again.Processing(UrgencyMedium) != 4*time.Hour {
		t.Errorf("catalog processing times were mutated: %v", again.ProcessingTime)
	}
}
