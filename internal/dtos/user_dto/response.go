package user_dto

import (
	"time"

	"github.com/adrnhkm/nearby-chat/internal/entity"
)

type AuthResponse struct {
	Token string             `json:"token"`
	User  entity.UserSummary `json:"user"`
}

type ProfileResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	LastSeen    *time.Time `json:"last_seen"`
}
