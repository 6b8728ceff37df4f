package specification

import (
	"advisor-chat-be/internal/entity"

	"gorm.io/gorm"
)

type ByCategory struct {
	Category entity.Category
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return FilterBy{Field: "category", Value: string(s.Category)}.Apply(db)
}

type OnlySelected struct{}

func (s OnlySelected) Apply(db *gorm.DB) *gorm.DB {
	return FilterBy{Field: "selected", Value: true}.Apply(db)
}

// InStoredOrder orders sources the way they were last written.
func InStoredOrder() Specification {
	return OrderBy{Field: "position"}
}
