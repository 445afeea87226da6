package presence_service

import (
	"context"

	"github.com/adrnhkm/nearby-chat/internal/dtos/presence_dto"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
)

type PresenceServiceContract interface {
	ReportLocation(ctx context.Context, userID string, req presence_dto.ReportLocationRequest) *app_error.AppError
	FindNearby(ctx context.Context, userID string, radiusMeters float64) (*presence_dto.NearbyResponse, *app_error.AppError)
}
