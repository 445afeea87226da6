package presence

import (
	"time"

	"github.com/adrnhkm/nearby-chat/internal/geo"
)

// Presence is a user's most recent reported coordinate plus the time it was
// reported. A record is only meaningful while it is fresh; freshness is
// evaluated lazily at read time, never by an expiry timer.
type Presence struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	LastSeen int64   `json:"last_seen"` // unix milliseconds
}

func (p *Presence) Point() geo.Point {
	return geo.Point{Lat: p.Lat, Lon: p.Lon}
}

// Fresh reports whether the record is recent enough to count as active.
func (p *Presence) Fresh(now time.Time, window time.Duration) bool {
	if p == nil {
		return false
	}
	return now.Sub(time.UnixMilli(p.LastSeen)) <= window
}
