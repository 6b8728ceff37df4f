package model

import (
	"time"

	"github.com/google/uuid"
)

type Source struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position  int       `gorm:"not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Kind      string    `gorm:"type:varchar(32);not null"`
	Category  string    `gorm:"type:varchar(32);not null;index"`
	Content   string    `gorm:"type:text"`
	MediaType string    `gorm:"type:varchar(255)"`
	Selected  bool      `gorm:"not null"`
	Theme     string    `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Source) TableName() string {
	return "sources"
}
