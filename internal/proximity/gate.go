package proximity

import (
	"time"

	"github.com/adrnhkm/nearby-chat/internal/geo"
	"github.com/adrnhkm/nearby-chat/internal/presence"
)

// Reason is the human-readable denial reason relayed back to a sender.
type Reason string

const (
	ReasonDisconnected Reason = "User is disconnected"
	ReasonTooFar       Reason = "User is too far !"
	ReasonInvalid      Reason = "invalid participants"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

var Allowed = Decision{Allowed: true}

func Denied(r Reason) Decision {
	return Decision{Reason: r}
}

// Gate decides whether two users may exchange a message right now. It is a
// pure function of both presence records and the clock: no caching, evaluated
// again on every send so that moving apart or going idle silences a room
// without any explicit leave.
type Gate struct {
	RadiusMeters float64
	StaleWindow  time.Duration
}

// Check applies the denial reasons in priority order: absent or stale presence
// first, then distance.
func (g Gate) Check(a, b *presence.Presence, now time.Time) Decision {
	if !a.Fresh(now, g.StaleWindow) || !b.Fresh(now, g.StaleWindow) {
		return Denied(ReasonDisconnected)
	}
	if geo.Haversine(a.Point(), b.Point()) > g.RadiusMeters {
		return Denied(ReasonTooFar)
	}
	return Allowed
}
