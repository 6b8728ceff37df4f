package implementation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/model"
	"advisor-chat-be/internal/repository/specification"
	"advisor-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewGormDB(database.GormConfig{
		Driver:   database.DriverSQLite,
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedSources() []*entity.Source {
	now := time.Now().UTC().Truncate(time.Second)
	return []*entity.Source{
		{Id: uuid.New(), Name: "guide", Kind: entity.SourceKindPDF, Category: entity.CategoryAdvisor, Selected: true, Theme: "royal", CreatedAt: now},
		{Id: uuid.New(), Name: "faq", Kind: entity.SourceKindText, Category: entity.CategoryAdvisor, Selected: false, Theme: "cyan", CreatedAt: now},
		{Id: uuid.New(), Name: "sheet", Kind: entity.SourceKindSpreadsheet, Category: entity.CategoryRepository, Selected: true, Theme: "bogus", CreatedAt: now},
	}
}

func names(sources []*entity.Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Name)
	}
	return out
}

func TestSourceRepositorySpecifications(t *testing.T) {
	repo := NewSourceRepository(openDB(t))
	ctx := context.Background()
	seed := seedSources()
	require.NoError(t, repo.ReplaceAll(ctx, seed))

	all, err := repo.FindAll(ctx, specification.InStoredOrder())
	require.NoError(t, err)
	assert.Equal(t, []string{"guide", "faq", "sheet"}, names(all))
	assert.Equal(t, entity.DefaultTheme, all[2].Theme)

	reversed, err := repo.FindAll(ctx, specification.OrderBy{Field: "position", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"sheet", "faq", "guide"}, names(reversed))

	selectedAdvisor, err := repo.FindAll(ctx,
		specification.ByCategory{Category: entity.CategoryAdvisor},
		specification.OnlySelected{},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"guide"}, names(selectedAdvisor))

	byID, err := repo.FindAll(ctx, specification.ByID{ID: seed[1].Id})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.False(t, byID[0].Selected)

	n, err := repo.Count(ctx, specification.FilterBy{Field: "kind", Value: string(entity.SourceKindSpreadsheet)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.ReplaceAll(ctx, nil))
	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestKeyValueRepository(t *testing.T) {
	repo := NewKeyValueRepository(openDB(t))
	ctx := context.Background()

	_, found, err := repo.Get(ctx, "transcript:advisor")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, "transcript:advisor", `[]`))
	require.NoError(t, repo.Set(ctx, "transcript:advisor", `[{"id":"w-adv"}]`))

	value, found, err := repo.Get(ctx, "transcript:advisor")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"w-adv"}]`, value)

	require.NoError(t, repo.Delete(ctx, "transcript:advisor"))
	_, found, err = repo.Get(ctx, "transcript:advisor")
	require.NoError(t, err)
	assert.False(t, found)
}
