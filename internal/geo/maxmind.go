package geo

import (
	"context"
	"fmt"
	"math"
	"net"
	"sync"

	"github.com/ivugurura/radio-landing/internal/logging"
	"github.com/oschwald/geoip2-golang"
)

// MaxMind resolves addresses from a local GeoLite2/GeoIP2 City database. It
// is a fallback for when the online lookup fails; with no database it
// reports ErrUnavailable.
type MaxMind struct {
	mu sync.RWMutex
	db *geoip2.Reader
}

func NewMaxMind(dbPath string, enabled bool) *MaxMind {
	m := &MaxMind{}
	if !enabled {
		return m
	}
	db, err := geoip2.Open(dbPath)
	if err != nil {
		logging.Warn().Err(err).Str("path", dbPath).Msg("geo: failed opening db (continuing without offline geo)")
		return m
	}
	m.db = db
	return m
}

func (m *MaxMind) Name() string { return "maxmind" }

// Cacheable is false: database records carry no isp, org or as.
func (m *MaxMind) Cacheable() bool { return false }

func (m *MaxMind) Available() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db != nil
}

func (m *MaxMind) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		m.db.Close()
		m.db = nil
	}
}

func (m *MaxMind) Locate(_ context.Context, ip string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.db == nil {
		return Record{}, ErrUnavailable
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Record{}, fmt.Errorf("maxmind: invalid ip %q", ip)
	}
	city, err := m.db.City(parsed)
	if err != nil {
		return Record{}, fmt.Errorf("maxmind: lookup %s: %w", ip, err)
	}
	return cityRecord(ip, city), nil
}

func cityRecord(ip string, city *geoip2.City) Record {
	rec := Record{
		Status:      StatusSuccess,
		Query:       ip,
		Country:     city.Country.Names["en"],
		CountryCode: city.Country.IsoCode,
		City:        city.City.Names["en"],
		Zip:         city.Postal.Code,
		Lat:         round2(city.Location.Latitude),
		Lon:         round2(city.Location.Longitude),
		Timezone:    city.Location.TimeZone,
	}
	if len(city.Subdivisions) > 0 {
		rec.Region = city.Subdivisions[0].IsoCode
		rec.RegionName = city.Subdivisions[0].Names["en"]
	}
	if rec.Country == "" && rec.CountryCode == "" {
		rec.Status = StatusFail
		rec.Message = "no data"
	}
	return rec
}

func round2(f float64) *float64 {
	r := math.Round(f*100) / 100
	return &r
}
