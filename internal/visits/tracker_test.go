package visits

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ivugurura/radio-landing/internal/geo"
	"github.com/ivugurura/radio-landing/internal/ipdir"
	"github.com/ivugurura/radio-landing/internal/logging"
)

type countingLocator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingLocator) Name() string { return "counting" }

func (c *countingLocator) Locate(_ context.Context, ip string) (geo.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return geo.Record{}, c.err
	}
	return geo.Record{Status: geo.StatusSuccess, City: "Kigali", Country: "Rwanda", Query: ip}, nil
}

func (c *countingLocator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *recordingNotifier) Send(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return r.err
}

// failingDirectory simulates an unreadable and unwritable cache.
type failingDirectory struct{}

func (failingDirectory) Lookup(context.Context, string) (geo.Record, bool, error) {
	return geo.Record{}, false, errors.New("disk on fire")
}

func (failingDirectory) Append(context.Context, geo.Record) error {
	return errors.New("disk on fire")
}

func visit(ip string) Visit {
	return Visit{ID: "v1", IP: ip, UserAgent: "curl/8.0", At: time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)}
}

func TestTrackNewIPAppendsOnce(t *testing.T) {
	ctx := context.Background()
	store := ipdir.NewStore(filepath.Join(t.TempDir(), "ip_data.json"))
	loc := &countingLocator{}
	n := &recordingNotifier{}
	tr := NewTracker(store, loc, n)

	if err := tr.Track(ctx, visit("203.0.113.5")); err != nil {
		t.Fatalf("Track: %v", err)
	}

	recs, err := store.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Query != "203.0.113.5" {
		t.Fatalf("records = %+v", recs)
	}
	if loc.Calls() != 1 {
		t.Errorf("locator calls = %d, want 1", loc.Calls())
	}
	if len(n.texts) != 1 || !strings.Contains(n.texts[0], "📍 Location: Kigali, Rwanda") {
		t.Errorf("notifications = %q", n.texts)
	}
}

func TestTrackKnownIPSkipsLocator(t *testing.T) {
	ctx := context.Background()
	store := ipdir.NewStore(filepath.Join(t.TempDir(), "ip_data.json"))
	if err := store.Append(ctx, geo.Record{Query: "198.51.100.2", City: "Goma", Country: "DR Congo"}); err != nil {
		t.Fatal(err)
	}
	loc := &countingLocator{}
	n := &recordingNotifier{}
	tr := NewTracker(store, loc, n)

	for i := 0; i < 3; i++ {
		if err := tr.Track(ctx, visit("198.51.100.2")); err != nil {
			t.Fatalf("Track: %v", err)
		}
	}
	if loc.Calls() != 0 {
		t.Errorf("locator called %d times for a cached ip", loc.Calls())
	}
	recs, _ := store.Records(ctx)
	if len(recs) != 1 {
		t.Errorf("records = %d, want 1", len(recs))
	}
	if len(n.texts) != 3 || !strings.Contains(n.texts[0], "Goma, DR Congo") {
		t.Errorf("notifications = %q", n.texts)
	}
}

func TestTrackGeolocationFailure(t *testing.T) {
	store := ipdir.NewStore(filepath.Join(t.TempDir(), "ip_data.json"))
	n := &recordingNotifier{}
	tr := NewTracker(store, &countingLocator{err: errors.New("timeout")}, n)

	err := tr.Track(context.Background(), visit("203.0.113.9"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(n.texts) != 0 {
		t.Errorf("notification sent despite geolocation failure")
	}
	recs, _ := store.Records(context.Background())
	if len(recs) != 0 {
		t.Errorf("records = %+v", recs)
	}
}

func TestTrackNotificationFailure(t *testing.T) {
	boom := errors.New("network down")
	store := ipdir.NewStore(filepath.Join(t.TempDir(), "ip_data.json"))
	tr := NewTracker(store, &countingLocator{}, &recordingNotifier{err: boom})

	err := tr.Track(context.Background(), visit("203.0.113.10"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	recs, _ := store.Records(context.Background())
	if len(recs) != 1 {
		t.Errorf("record should be cached before notifying, got %d", len(recs))
	}
}

func TestTrackDirectoryFailuresAreNotFatal(t *testing.T) {
	loc := &countingLocator{}
	n := &recordingNotifier{}
	tr := NewTracker(failingDirectory{}, loc, n)

	if err := tr.Track(context.Background(), visit("203.0.113.11")); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if loc.Calls() != 1 || len(n.texts) != 1 {
		t.Errorf("calls=%d notifications=%d", loc.Calls(), len(n.texts))
	}
}

// offlineLocator stands in for the local database: city only, never cached.
type offlineLocator struct{}

func (offlineLocator) Name() string    { return "offline" }
func (offlineLocator) Cacheable() bool { return false }

func (offlineLocator) Locate(_ context.Context, ip string) (geo.Record, error) {
	return geo.Record{Status: geo.StatusSuccess, City: "Kigali", Country: "Rwanda", Query: ip}, nil
}

type flakyLocator struct {
	mu    sync.Mutex
	calls int
	down  bool
}

func (f *flakyLocator) Name() string { return "flaky" }

func (f *flakyLocator) Locate(_ context.Context, ip string) (geo.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.down {
		return geo.Record{}, errors.New("ip-api unreachable")
	}
	return geo.Record{Status: geo.StatusSuccess, City: "Kigali", Country: "Rwanda", ISP: "MTN", Query: ip}, nil
}

func TestTrackFallbackRecordIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := ipdir.NewStore(filepath.Join(t.TempDir(), "ip_data.json"))
	primary := &flakyLocator{down: true}
	n := &recordingNotifier{}
	tr := NewTracker(store, geo.NewChain(primary, offlineLocator{}), n)

	if err := tr.Track(ctx, visit("203.0.113.5")); err != nil {
		t.Fatalf("Track during outage: %v", err)
	}
	if !strings.Contains(n.texts[0], "📍 Location: Kigali, Rwanda") || !strings.Contains(n.texts[0], "🏢 ISP: Unknown") {
		t.Errorf("fallback notification = %q", n.texts[0])
	}
	if recs, _ := store.Records(ctx); len(recs) != 0 {
		t.Fatalf("fallback record cached: %+v", recs)
	}

	primary.mu.Lock()
	primary.down = false
	primary.mu.Unlock()

	for i := 0; i < 2; i++ {
		if err := tr.Track(ctx, visit("203.0.113.5")); err != nil {
			t.Fatalf("Track after recovery: %v", err)
		}
	}
	if primary.calls != 2 {
		t.Errorf("primary calls = %d, want 2 (outage, recovery, then cache hit)", primary.calls)
	}
	recs, err := store.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ISP != "MTN" {
		t.Errorf("records = %+v, want the full record", recs)
	}
	for _, text := range n.texts[1:] {
		if !strings.Contains(text, "🏢 ISP: MTN") {
			t.Errorf("notification after recovery = %q", text)
		}
	}
}

func TestTrackWithoutIP(t *testing.T) {
	loc := &countingLocator{}
	n := &recordingNotifier{}
	tr := NewTracker(failingDirectory{}, loc, n)

	if err := tr.Track(context.Background(), visit("")); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if loc.Calls() != 0 {
		t.Errorf("locator called without ip")
	}
	if len(n.texts) != 1 || !strings.Contains(n.texts[0], "🌐 IP: Unknown") {
		t.Errorf("notifications = %q", n.texts)
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	r.Header.Set("User-Agent", "Mozilla/5.0")
	r = r.WithContext(logging.ContextWithRequestID(r.Context(), "req-1"))
	at := time.Now()

	v := FromRequest(r, at)
	if v.ID != "req-1" || v.IP != "192.0.2.1" || v.UserAgent != "Mozilla/5.0" || !v.At.Equal(at) {
		t.Errorf("unexpected visit: %+v", v)
	}
	if v.ClientType() != "browser" {
		t.Errorf("ClientType = %q", v.ClientType())
	}

	bare := FromRequest(httptest.NewRequest(http.MethodGet, "/", nil), at)
	if bare.ID == "" {
		t.Error("expected generated id")
	}
}
