package engine

import (
	"fmt"
	"time"
)

// Catalog is an immutable channel registry.
type Catalog struct {
	order    []string
	channels map[string]Channel
}

// NewCatalog validates channels and freezes them. Any violation fails the whole catalog.
func NewCatalog(channels []Channel) (*Catalog, error) {
	if len(channels) == 0 {
		return nil, &ConfigurationError{Reason: "catalog has no channels"}
	}

	c := &Catalog{channels: make(map[string]Channel, len(channels))}
	for _, ch := range channels {
		if err := validateChannel(ch); err != nil {
			return nil, err
		}
		if _, dup := c.channels[ch.ID]; dup {
			return nil, &ConfigurationError{Subject: ch.ID, Reason: "duplicate channel id"}
		}
		c.channels[ch.ID] = ch.clone()
		c.order = append(c.order, ch.ID)
	}
	return c, nil
}

func validateChannel(ch Channel) error {
	fail := func(format string, args ...interface{}) error {
		return &ConfigurationError{Subject: ch.ID, Reason: fmt.Sprintf(format, args...)}
	}

	if ch.ID == "" {
		return &ConfigurationError{Reason: "channel id is empty"}
	}
	if !ch.Type.Valid() {
		return fail("unknown channel type %q", ch.Type)
	}
	if ch.Availability.MinAmount > ch.Availability.MaxAmount {
		return fail("minAmount %.2f exceeds maxAmount %.2f", ch.Availability.MinAmount, ch.Availability.MaxAmount)
	}
	if ch.BaseFeeRate < 0 {
		return fail("baseFeeRate must be >= 0, got %v", ch.BaseFeeRate)
	}
	if ch.RateModifier <= 0 {
		return fail("rateModifier must be > 0, got %v", ch.RateModifier)
	}
	for name, v := range map[string]int{"convenience": ch.Convenience, "security": ch.Security, "speed": ch.Speed} {
		if v < 1 || v > 5 {
			return fail("%s rating %d outside [1,5]", name, v)
		}
	}
	for u, d := range ch.ProcessingTime {
		if d < 0 {
			return fail("negative processing time for %s", u)
		}
	}
	return nil
}

// List returns channels in catalog order.
func (c *Catalog) List() []Channel {
	out := make([]Channel, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.channels[id].clone())
	}
	return out
}

func (c *Catalog) Get(id string) (Channel, error) {
	ch, ok := c.channels[id]
	if !ok {
		return Channel{}, fmt.Errorf("%w: %s", ErrChannelNotFound, id)
	}
	return ch.clone(), nil
}

func (c *Catalog) Len() int {
	return len(c.order)
}

func perUrgency(low, medium, high time.Duration) map[Urgency]time.Duration {
	return map[Urgency]time.Duration{UrgencyLow: low, UrgencyMedium: medium, UrgencyHigh: high}
}

// DefaultChannels is the built-in five-channel catalog.
func DefaultChannels() []Channel {
	return []Channel{
		{
			ID: "major_bank", Name: "Major bank branch", Type: Bank,
			RateModifier: 0.998, BaseFeeRate: 0.5,
			Convenience: 3, Security: 5, Speed: 2,
			Availability:   Availability{SupportsCash: true, SupportsDigital: true, MinAmount: 100, MaxAmount: 50000},
			ProcessingTime: perUrgency(48*time.Hour, 4*time.Hour, time.Hour),
		},
		{
			ID: "online_bank", Name: "Online banking", Type: Online,
			RateModifier: 0.999, BaseFeeRate: 0.3,
			Convenience: 5, Security: 4, Speed: 5,
			Availability:   Availability{SupportsCash: false, SupportsDigital: true, MinAmount: 50, MaxAmount: 100000},
			ProcessingTime: perUrgency(0, 0, 0),
		},
		{
			ID: "airport_exchange", Name: "Airport exchange counter", Type: Airport,
			RateModifier: 0.985, BaseFeeRate: 2.0,
			Convenience: 4, Security: 4, Speed: 4,
			Availability:   Availability{SupportsCash: true, SupportsDigital: false, MinAmount: 100, MaxAmount: 10000},
			ProcessingTime: perUrgency(30*time.Minute, 30*time.Minute, 30*time.Minute),
		},
		{
			ID: "exchange_shop", Name: "Exchange shop", Type: ExchangeShop,
			RateModifier: 0.992, BaseFeeRate: 1.0,
			Convenience: 3, Security: 3, Speed: 4,
			Availability:   Availability{SupportsCash: true, SupportsDigital: false, MinAmount: 200, MaxAmount: 20000},
			ProcessingTime: perUrgency(time.Hour, time.Hour, 30*time.Minute),
		},
		{
			ID: "atm_withdrawal", Name: "ATM withdrawal abroad", Type: ATM,
			RateModifier: 0.995, BaseFeeRate: 1.5,
			Convenience: 5, Security: 4, Speed: 5,
			Availability:   Availability{SupportsCash: true, SupportsDigital: true, MinAmount: 100, MaxAmount: 5000},
			ProcessingTime: perUrgency(0, 0, 0),
		},
	}
}

// DefaultCatalog builds the catalog from DefaultChannels.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultChannels())
	if err != nil {
		panic("default catalog is invalid: " + err.Error())
	}
	return c
}
