package implementation

import (
	"context"
	"errors"

	"advisor-chat-be/internal/model"
	"advisor-chat-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KeyValueRepositoryImpl struct {
	db *gorm.DB
}

func NewKeyValueRepository(db *gorm.DB) contract.KeyValueRepository {
	return &KeyValueRepositoryImpl{db: db}
}

func (r *KeyValueRepositoryImpl) Get(ctx context.Context, key string) (string, bool, error) {
	var m model.KeyValueEntry
	if err := r.db.WithContext(ctx).Where(&model.KeyValueEntry{Key: key}).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(m.Value), true, nil
}

func (r *KeyValueRepositoryImpl) Set(ctx context.Context, key, value string) error {
	m := model.KeyValueEntry{Key: key, Value: datatypes.JSON(value)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
}

func (r *KeyValueRepositoryImpl) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&model.KeyValueEntry{Key: key}).Error
}
