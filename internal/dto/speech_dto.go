package dto

type ToggleSpeechRequest struct {
	Category  string `json:"category" validate:"required,oneof=advisor repository"`
	MessageId string `json:"message_id" validate:"required"`
}
