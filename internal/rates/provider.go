// Package rates supplies base exchange rates: a live HTTP source, a TTL cache in
// front of it, and the static table used when neither is available.
package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrRateUnavailable is wrapped by every provider failure.
var ErrRateUnavailable = errors.New("rate unavailable")

// Provider returns the base rate for converting one unit of from into to.
type Provider interface {
	BaseRate(ctx context.Context, from, to string) (float64, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, from, to string) (float64, error)

func (f ProviderFunc) BaseRate(ctx context.Context, from, to string) (float64, error) {
	return f(ctx, from, to)
}

func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrRateUnavailable, fmt.Sprintf(format, args...))
}

// Chain tries providers in order and returns the first usable rate.
type Chain []Provider

func (c Chain) BaseRate(ctx context.Context, from, to string) (float64, error) {
	if len(c) == 0 {
		return 0, unavailable("no providers configured")
	}

	var errs []error
	for _, p := range c {
		rate, err := p.BaseRate(ctx, from, to)
		if err == nil && rate > 0 {
			return rate, nil
		}
		if err == nil {
			err = unavailable("non-positive rate %v", rate)
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return 0, fmt.Errorf("%w: %w", ErrRateUnavailable, errors.Join(errs...))
}

func pairLabel(from, to string) string {
	return strings.ToUpper(from) + "/" + strings.ToUpper(to)
}
