package workspace

import (
	"advisor-chat-be/internal/entity"

	"github.com/google/uuid"
)

// Snapshot is a deep copy of the workspace. Version increases with every mutation
// so consumers can discard stale copies.
type Snapshot struct {
	Version    uint64
	Sources    []entity.Source
	Advisor    []entity.Message
	Repository []entity.Message
	Focused    uuid.UUID
}

func (s Snapshot) Transcript(category entity.Category) []entity.Message {
	if category == entity.CategoryRepository {
		return s.Repository
	}
	return s.Advisor
}

func (s *Snapshot) SetTranscript(category entity.Category, msgs []entity.Message) {
	if category == entity.CategoryRepository {
		s.Repository = msgs
		return
	}
	s.Advisor = msgs
}
