package entity

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryAdvisor    Category = "advisor"
	CategoryRepository Category = "repository"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryAdvisor, CategoryRepository}

func (c Category) Valid() bool {
	return c == CategoryAdvisor || c == CategoryRepository
}

type SourceKind string

const (
	SourceKindPDF         SourceKind = "pdf"
	SourceKindText        SourceKind = "text"
	SourceKindSpreadsheet SourceKind = "spreadsheet"
	SourceKindLink        SourceKind = "link"
)

type Theme string

const (
	ThemeCyan     Theme = "cyan"
	ThemeRoyal    Theme = "royal"
	ThemeEmerald  Theme = "emerald"
	ThemeSunset   Theme = "sunset"
	ThemeMidnight Theme = "midnight"

	DefaultTheme = ThemeCyan
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeCyan, ThemeRoyal, ThemeEmerald, ThemeSunset, ThemeMidnight:
		return true
	}
	return false
}

// Source is grounding material attached to one category.
// Content is plain text for text and link sources, base64 for binary uploads.
type Source struct {
	Id        uuid.UUID
	Name      string
	Kind      SourceKind
	Category  Category
	Content   string
	MediaType string
	Selected  bool
	Theme     Theme
	CreatedAt time.Time
}
