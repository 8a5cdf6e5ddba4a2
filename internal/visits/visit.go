package visits

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ivugurura/radio-landing/internal/logging"
	"github.com/ivugurura/radio-landing/internal/netutil"
)

// Visit is one homepage hit.
type Visit struct {
	ID        string
	IP        string
	UserAgent string
	At        time.Time
}

// FromRequest captures the visitor details of r. The request id set by the
// router middleware is reused as the visit id when present.
func FromRequest(r *http.Request, at time.Time) Visit {
	id := logging.RequestIDFromContext(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	return Visit{
		ID:        id,
		IP:        netutil.ClientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		At:        at,
	}
}

func (v Visit) ClientType() string {
	return netutil.ClassifyUserAgent(v.UserAgent)
}
