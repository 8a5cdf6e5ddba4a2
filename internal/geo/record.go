package geo

import (
	"context"
	"errors"
)

// Record is a geolocation result keyed by Query (the looked-up IP). Field
// names follow ip-api.com so a response body round-trips unchanged;
// coordinates are pointers so 0 survives and an absent field stays absent.
type Record struct {
	Status      string   `json:"status"`
	Message     string   `json:"message,omitempty"`
	Country     string   `json:"country,omitempty"`
	CountryCode string   `json:"countryCode,omitempty"`
	Region      string   `json:"region,omitempty"`
	RegionName  string   `json:"regionName,omitempty"`
	City        string   `json:"city,omitempty"`
	Zip         string   `json:"zip,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
	ISP         string   `json:"isp,omitempty"`
	Org         string   `json:"org,omitempty"`
	AS          string   `json:"as,omitempty"`
	Query       string   `json:"query"`
}

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

var ErrUnavailable = errors.New("geo: locator unavailable")

type Locator interface {
	Locate(ctx context.Context, ip string) (Record, error)
	Name() string
}

// Cacheable is implemented by locators whose records are incomplete and so
// must not become an ip's permanent directory entry. Locators that do not
// implement it are cacheable.
type Cacheable interface {
	Cacheable() bool
}

// Sourced is implemented by locators that delegate, such as Chain, and can
// name the locator that produced the record.
type Sourced interface {
	LocateSource(ctx context.Context, ip string) (Record, Locator, error)
}

func IsCacheable(l Locator) bool {
	if c, ok := l.(Cacheable); ok {
		return c.Cacheable()
	}
	return true
}

// Resolve locates ip with l and reports whether the record may be cached.
func Resolve(ctx context.Context, l Locator, ip string) (Record, bool, error) {
	s, ok := l.(Sourced)
	if !ok {
		rec, err := l.Locate(ctx, ip)
		if err != nil {
			return Record{}, false, err
		}
		return rec, IsCacheable(l), nil
	}
	rec, src, err := s.LocateSource(ctx, ip)
	if err != nil {
		return Record{}, false, err
	}
	return rec, IsCacheable(src), nil
}
