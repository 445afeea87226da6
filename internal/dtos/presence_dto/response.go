package presence_dto

import "github.com/adrnhkm/nearby-chat/internal/entity"

type NearbyUser struct {
	entity.UserSummary
	DistanceMeters float64 `json:"distance_meters"`
	LastSeen       int64   `json:"last_seen"`
}

type NearbyResponse struct {
	Nearby []NearbyUser `json:"nearby"`
}
