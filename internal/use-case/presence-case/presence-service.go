package presence_service

import (
	"context"

	"github.com/adrnhkm/nearby-chat/internal/dtos/presence_dto"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/internal/presence"
	user_repo "github.com/adrnhkm/nearby-chat/internal/repo/user"
	"github.com/adrnhkm/nearby-chat/state"
)

type PresenceService struct {
	Tracker       *presence.Tracker
	UserRepo      user_repo.UserRepoContract
	DefaultRadius float64
}

func NewPresenceService(appState *state.AppState, tracker *presence.Tracker, defaultRadius float64) PresenceServiceContract {
	return &PresenceService{
		Tracker:       tracker,
		UserRepo:      user_repo.NewUserRepo(appState),
		DefaultRadius: defaultRadius,
	}
}

func (s *PresenceService) ReportLocation(ctx context.Context, userID string, req presence_dto.ReportLocationRequest) *app_error.AppError {
	return s.Tracker.Report(ctx, userID, req.Lat, req.Lon)
}

// FindNearby resolves fresh users within the radius (default when <= 0) into
// user summaries. Result order is whatever the geo query produced; callers
// must not rely on it.
func (s *PresenceService) FindNearby(ctx context.Context, userID string, radiusMeters float64) (*presence_dto.NearbyResponse, *app_error.AppError) {
	if radiusMeters <= 0 {
		radiusMeters = s.DefaultRadius
	}

	candidates, err := s.Tracker.Nearby(ctx, userID, radiusMeters)
	if err != nil {
		return nil, err
	}

	resp := &presence_dto.NearbyResponse{Nearby: []presence_dto.NearbyUser{}}
	if len(candidates) == 0 {
		return resp, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.UserID)
	}

	users, err := s.UserRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]presence_dto.NearbyUser, len(users))
	for _, u := range users {
		byID[u.ID] = presence_dto.NearbyUser{UserSummary: u.Summary()}
	}

	for _, c := range candidates {
		hit, ok := byID[c.UserID]
		if !ok {
			// presence outlived the account, skip
			continue
		}
		hit.DistanceMeters = c.DistanceMeters
		if p, pErr := s.Tracker.Get(ctx, c.UserID); pErr == nil && p != nil {
			hit.LastSeen = p.LastSeen
		}
		resp.Nearby = append(resp.Nearby, hit)
	}

	return resp, nil
}
