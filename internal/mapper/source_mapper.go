package mapper

import (
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/model"
)

type SourceMapper struct{}

func NewSourceMapper() *SourceMapper {
	return &SourceMapper{}
}

func (m *SourceMapper) ToEntity(s *model.Source) *entity.Source {
	if s == nil {
		return nil
	}

	theme := entity.Theme(s.Theme)
	if !theme.Valid() {
		theme = entity.DefaultTheme
	}

	return &entity.Source{
		Id:        s.Id,
		Name:      s.Name,
		Kind:      entity.SourceKind(s.Kind),
		Category:  entity.Category(s.Category),
		Content:   s.Content,
		MediaType: s.MediaType,
		Selected:  s.Selected,
		Theme:     theme,
		CreatedAt: s.CreatedAt,
	}
}

// ToModel maps a source stored at the given position.
func (m *SourceMapper) ToModel(s *entity.Source, position int) *model.Source {
	if s == nil {
		return nil
	}

	return &model.Source{
		Id:        s.Id,
		Position:  position,
		Name:      s.Name,
		Kind:      string(s.Kind),
		Category:  string(s.Category),
		Content:   s.Content,
		MediaType: s.MediaType,
		Selected:  s.Selected,
		Theme:     string(s.Theme),
		CreatedAt: s.CreatedAt,
	}
}

func (m *SourceMapper) ToEntities(models []*model.Source) []*entity.Source {
	entities := make([]*entity.Source, 0, len(models))
	for _, s := range models {
		entities = append(entities, m.ToEntity(s))
	}
	return entities
}

func (m *SourceMapper) ToModels(sources []*entity.Source) []*model.Source {
	models := make([]*model.Source, 0, len(sources))
	for i, s := range sources {
		models = append(models, m.ToModel(s, i))
	}
	return models
}
