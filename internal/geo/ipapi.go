package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	DefaultIPAPIURL = "http://ip-api.com/json"

	ipAPIFields = "status,message,country,countryCode,region,regionName,city,zip,lat,lon,timezone,isp,org,as,query"
)

// IPAPI looks addresses up against ip-api.com. A "fail" body (private or
// reserved ranges) is still a valid Record and is returned without error.
type IPAPI struct {
	baseURL    string
	httpClient *http.Client
}

func NewIPAPI(baseURL string, timeout time.Duration) *IPAPI {
	if baseURL == "" {
		baseURL = DefaultIPAPIURL
	}
	return &IPAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *IPAPI) Name() string { return "ip-api.com" }

func (c *IPAPI) Locate(ctx context.Context, ip string) (Record, error) {
	u := fmt.Sprintf("%s/%s?fields=%s", c.baseURL, url.PathEscape(ip), ipAPIFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return Record{}, fmt.Errorf("ip-api: build request: %w", err)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("ip-api: query %s: %w", ip, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return Record{}, fmt.Errorf("ip-api: status=%d", res.StatusCode)
	}

	var rec Record
	if err := json.NewDecoder(res.Body).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("ip-api: decode: %w", err)
	}
	if rec.Query == "" {
		rec.Query = ip
	}
	return rec, nil
}
