package visits

import (
	"context"
	"fmt"

	"github.com/ivugurura/radio-landing/internal/geo"
	"github.com/ivugurura/radio-landing/internal/ipdir"
	"github.com/ivugurura/radio-landing/internal/logging"
	"github.com/ivugurura/radio-landing/internal/metrics"
	"github.com/ivugurura/radio-landing/internal/notify"
)

// Tracker resolves a visitor's location, remembering it in the directory,
// and alerts the operator.
type Tracker struct {
	dir      ipdir.Directory
	locator  geo.Locator
	notifier notify.Notifier
}

func NewTracker(dir ipdir.Directory, locator geo.Locator, notifier notify.Notifier) *Tracker {
	return &Tracker{
		dir:      dir,
		locator:  locator,
		notifier: notifier,
	}
}

// Track runs the whole sequence for v. Directory read and write failures are
// logged and skipped. Records from a non-cacheable locator are used for the
// notification but not saved, so the next visit asks again. A failed geolocation or notification ends the sequence
// and is returned; nothing here should stop the page from being served.
func (t *Tracker) Track(ctx context.Context, v Visit) error {
	log := logging.Ctx(ctx).With().Str("visit", v.ID).Str("ip", v.IP).Logger()
	metrics.VisitsTotal.WithLabelValues(v.ClientType()).Inc()

	rec, err := t.resolve(ctx, v.IP)
	if err != nil {
		return err
	}

	text := notify.FormatVisit(v.IP, rec, v.UserAgent, v.At)
	if err := t.notifier.Send(ctx, text); err != nil {
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("tracker: notify: %w", err)
	}
	metrics.NotificationsTotal.WithLabelValues("ok").Inc()
	log.Debug().Msg("tracker: visit notified")
	return nil
}

func (t *Tracker) resolve(ctx context.Context, ip string) (*geo.Record, error) {
	log := logging.Ctx(ctx)
	if ip == "" {
		log.Warn().Msg("tracker: no client ip, skipping geolocation")
		return nil, nil
	}

	cached, ok, err := t.dir.Lookup(ctx, ip)
	switch {
	case err != nil:
		metrics.DirectoryLookupsTotal.WithLabelValues("error").Inc()
		log.Warn().Err(err).Msg("tracker: reading ip directory failed, treating as miss")
	case ok:
		metrics.DirectoryLookupsTotal.WithLabelValues("hit").Inc()
		return &cached, nil
	default:
		metrics.DirectoryLookupsTotal.WithLabelValues("miss").Inc()
	}

	rec, cacheable, err := geo.Resolve(ctx, t.locator, ip)
	if err != nil {
		return nil, fmt.Errorf("tracker: geolocate %s: %w", ip, err)
	}
	if !cacheable {
		// fallback answer, used for this visit only
		log.Debug().Str("ip", ip).Msg("tracker: fallback geolocation not saved")
		return &rec, nil
	}
	if err := t.dir.Append(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("tracker: saving ip data failed")
	}
	return &rec, nil
}
