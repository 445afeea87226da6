package chat_dto

type CreateRoomRequest struct {
	OtherID string `json:"other_id" validate:"required,uuid"`
}
