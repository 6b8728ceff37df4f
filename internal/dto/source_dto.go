package dto

import (
	"time"

	"advisor-chat-be/internal/entity"

	"github.com/google/uuid"
)

type AddLinkRequest struct {
	Url string `json:"url" validate:"required,url"`
}

type AddTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type UpdateSourceRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Theme string `json:"theme" validate:"required,oneof=cyan royal emerald sunset midnight"`
}

// SourceResponse omits the content, which can be a whole base64 document.
type SourceResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"type"`
	Category  string    `json:"category"`
	MediaType string    `json:"mime_type"`
	Selected  bool      `json:"selected"`
	Theme     string    `json:"theme"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSourceResponse(s entity.Source) SourceResponse {
	return SourceResponse{
		Id:        s.Id,
		Name:      s.Name,
		Kind:      string(s.Kind),
		Category:  string(s.Category),
		MediaType: s.MediaType,
		Selected:  s.Selected,
		Theme:     string(s.Theme),
		Size:      len(s.Content),
		CreatedAt: s.CreatedAt,
	}
}

func NewSourceResponses(sources []entity.Source) []SourceResponse {
	out := make([]SourceResponse, 0, len(sources))
	for _, s := range sources {
		out = append(out, NewSourceResponse(s))
	}
	return out
}
