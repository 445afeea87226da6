package presence

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/geo"
	"github.com/adrnhkm/nearby-chat/internal/utils"
)

const (
	// GeoKey is the redis GEO set holding every reported coordinate.
	GeoKey = "presence:geo"
	// LastSeenKey is a ZSET of userID -> last report time (unix ms).
	LastSeenKey = "presence:lastseen"
)

func presenceKey(userID string) string {
	return "presence:" + userID
}

// Candidate is a discovery hit: a user within radius of the query center.
type Candidate struct {
	UserID         string
	DistanceMeters float64
}

// Tracker keeps per-user presence in redis. Writes are per-user and need no
// cross-user coordination; the staleness predicate runs on every read.
type Tracker struct {
	Redis       *redis.Client
	StaleWindow time.Duration

	// Now is an injectable clock so freshness can be tested deterministically.
	Now func() time.Time
}

func NewTracker(rdb *redis.Client, staleWindow time.Duration) *Tracker {
	return &Tracker{
		Redis:       rdb,
		StaleWindow: staleWindow,
		Now:         time.Now,
	}
}

// Report overwrites the user's coordinate and stamps last-seen with now.
func (t *Tracker) Report(ctx context.Context, userID string, lat, lon float64) *app_error.AppError {
	point := geo.Point{Lat: lat, Lon: lon}
	if !point.Valid() {
		return app_error.Validation("lat must be in [-90,90] and lon in [-180,180]", "location")
	}

	now := t.Now()
	doc := Presence{Lat: lat, Lon: lon, LastSeen: now.UnixMilli()}

	if err := utils.SetCacheData(ctx, t.Redis, presenceKey(userID), &doc, 0); err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, "failed to store presence", "redis")
	}

	_, err := t.Redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.GeoAdd(ctx, GeoKey, &redis.GeoLocation{
			Name:      userID,
			Longitude: lon,
			Latitude:  lat,
		})
		pipe.ZAdd(ctx, LastSeenKey, redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: userID,
		})
		return nil
	})
	if err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, "failed to index presence", "redis")
	}

	return nil
}

// Get returns the user's presence record, or nil when the user has never
// reported or has logged out. Staleness is for the caller to decide.
func (t *Tracker) Get(ctx context.Context, userID string) (*Presence, *app_error.AppError) {
	return utils.GetCacheData[Presence](ctx, t.Redis, presenceKey(userID))
}

// Fresh applies the read-time staleness predicate against the tracker clock.
func (t *Tracker) Fresh(p *Presence) bool {
	return p.Fresh(t.Now(), t.StaleWindow)
}

// Clear models logout: the user drops out of every future proximity match
// immediately, regardless of how recently they reported.
func (t *Tracker) Clear(ctx context.Context, userID string) *app_error.AppError {
	_, err := t.Redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, presenceKey(userID))
		pipe.ZRem(ctx, GeoKey, userID)
		pipe.ZRem(ctx, LastSeenKey, userID)
		return nil
	})
	if err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, "failed to clear presence", "redis")
	}
	return nil
}

// Nearby returns fresh users within radiusMeters of centerID, excluding the
// center itself. A center with no presence is not an error: "not currently
// discoverable" is an expected state and yields an empty result.
func (t *Tracker) Nearby(ctx context.Context, centerID string, radiusMeters float64) ([]Candidate, *app_error.AppError) {
	center, appErr := t.Get(ctx, centerID)
	if appErr != nil {
		return nil, appErr
	}
	if center == nil {
		return nil, nil
	}

	locations, err := t.Redis.GeoRadius(ctx, GeoKey, center.Lon, center.Lat, &redis.GeoRadiusQuery{
		Radius:   radiusMeters,
		Unit:     "m",
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, "geo query failed", "redis")
	}

	candidates := make([]Candidate, 0, len(locations))
	for _, loc := range locations {
		if loc.Name == centerID {
			continue
		}

		p, appErr := t.Get(ctx, loc.Name)
		if appErr != nil {
			return nil, appErr
		}
		if !t.Fresh(p) {
			continue
		}

		candidates = append(candidates, Candidate{
			UserID:         loc.Name,
			DistanceMeters: loc.Dist,
		})
	}

	log.Debug().Str("centerID", centerID).Float64("radius", radiusMeters).Int("hits", len(candidates)).Msg("presence: nearby query")
	return candidates, nil
}
