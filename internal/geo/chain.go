package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivugurura/radio-landing/internal/logging"
	"github.com/ivugurura/radio-landing/internal/metrics"
)

// Chain asks each locator in turn and returns the first answer.
type Chain struct {
	locators []Locator
}

func NewChain(locators ...Locator) *Chain {
	return &Chain{locators: locators}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Locate(ctx context.Context, ip string) (Record, error) {
	rec, _, err := c.LocateSource(ctx, ip)
	return rec, err
}

// LocateSource is Locate plus the locator that answered.
func (c *Chain) LocateSource(ctx context.Context, ip string) (Record, Locator, error) {
	var errs []error
	for _, l := range c.locators {
		rec, err := l.Locate(ctx, ip)
		if err == nil {
			metrics.GeoLookupsTotal.WithLabelValues(l.Name(), "ok").Inc()
			return rec, l, nil
		}
		if errors.Is(err, ErrUnavailable) {
			continue
		}
		metrics.GeoLookupsTotal.WithLabelValues(l.Name(), "error").Inc()
		logging.Ctx(ctx).Debug().Err(err).Str("provider", l.Name()).Str("ip", ip).Msg("geo: provider failed")
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Record{}, nil, ErrUnavailable
	}
	return Record{}, nil, fmt.Errorf("geo: all providers failed for %s: %w", ip, errors.Join(errs...))
}
