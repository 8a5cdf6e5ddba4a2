package notify

import (
	"fmt"
	"time"

	"github.com/ivugurura/radio-landing/internal/geo"
)

const (
	unknown    = "Unknown"
	timeLayout = "2006-01-02 15:04:05"
)

// FormatVisit renders the homepage-visit alert. rec may be nil; any empty
// field is shown as "Unknown".
func FormatVisit(ip string, rec *geo.Record, userAgent string, at time.Time) string {
	var r geo.Record
	if rec != nil {
		r = *rec
	}
	return fmt.Sprintf("🚀 Website Visited!\n\n"+
		"🌐 IP: %s\n"+
		"📍 Location: %s, %s\n"+
		"🏢 ISP: %s\n"+
		"📮 ZIP: %s\n"+
		"⏰ Time: %s\n"+
		"🌍 Region: %s\n"+
		"👀 User Agent: %s\n"+
		"🖥️ Path: Homepage Visit",
		orUnknown(ip),
		orUnknown(r.City), orUnknown(r.Country),
		orUnknown(r.ISP),
		orUnknown(r.Zip),
		at.Format(timeLayout),
		orUnknown(r.RegionName),
		orUnknown(userAgent),
	)
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
