package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/metrics"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/repository/implementation"
	"advisor-chat-be/internal/repository/unitofwork"
	"advisor-chat-be/internal/workspace"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPersistence(t *testing.T) (IPersistenceService, *metrics.Metrics) {
	t.Helper()
	db := newTestDB(t)
	m := metrics.NewMetrics()
	svc := NewPersistenceService(
		unitofwork.NewRepositoryFactory(db),
		implementation.NewKeyValueRepository(db),
		m,
		logger.NewNopLogger(),
	)
	return svc, m
}

func sampleSources() []entity.Source {
	now := time.Now().UTC().Truncate(time.Second)
	return []entity.Source{
		{Id: uuid.New(), Name: "b", Kind: entity.SourceKindText, Category: entity.CategoryAdvisor, Content: "x", MediaType: "text/plain", Selected: false, Theme: entity.ThemeRoyal, CreatedAt: now},
		{Id: uuid.New(), Name: "a", Kind: entity.SourceKindPDF, Category: entity.CategoryRepository, Content: "JVBE", MediaType: "application/pdf", Selected: true, Theme: entity.ThemeCyan, CreatedAt: now},
	}
}

func TestReplaceAllKeepsOrderAndFields(t *testing.T) {
	svc, _ := newPersistence(t)
	ctx := context.Background()
	sources := sampleSources()

	require.NoError(t, svc.ReplaceAll(ctx, sources))
	got, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sources[0].Id, got[0].Id)
	assert.Equal(t, "b", got[0].Name)
	assert.False(t, got[0].Selected)
	assert.Equal(t, entity.ThemeRoyal, got[0].Theme)
	assert.Equal(t, entity.SourceKindPDF, got[1].Kind)

	// Replacing with fewer rows removes the rest.
	require.NoError(t, svc.ReplaceAll(ctx, sources[1:]))
	got, err = svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sources[1].Id, got[0].Id)
}

func TestTranscriptRoundTrip(t *testing.T) {
	svc, _ := newPersistence(t)
	ctx := context.Background()

	_, found, err := svc.LoadTranscript(ctx, entity.CategoryAdvisor)
	require.NoError(t, err)
	assert.False(t, found)

	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	msgs := []entity.Message{{Id: "1", Role: entity.RoleUser, Text: "hi", CreatedAt: ts}}
	require.NoError(t, svc.SaveTranscript(ctx, entity.CategoryAdvisor, msgs))
	require.NoError(t, svc.SaveTranscript(ctx, entity.CategoryAdvisor, msgs))

	got, found, err := svc.LoadTranscript(ctx, entity.CategoryAdvisor)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)
	assert.True(t, ts.Equal(got[0].CreatedAt))
}

func TestTranscriptStoredAsRFC3339(t *testing.T) {
	db := newTestDB(t)
	kv := implementation.NewKeyValueRepository(db)
	svc := NewPersistenceService(unitofwork.NewRepositoryFactory(db), kv, nil, logger.NewNopLogger())
	ctx := context.Background()

	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.SaveTranscript(ctx, entity.CategoryRepository, []entity.Message{{Id: "1", Role: entity.RoleAssistant, Text: "x", CreatedAt: ts}}))

	raw, found, err := kv.Get(ctx, "transcript:repository")
	require.NoError(t, err)
	require.True(t, found)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "2025-03-01T10:00:00Z", decoded[0]["timestamp"])
}

func TestRestoreSanitizesTranscripts(t *testing.T) {
	svc, _ := newPersistence(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveTranscript(ctx, entity.CategoryAdvisor, []entity.Message{
		{Id: "1", Role: entity.RoleAssistant, Text: "  نعمل في  شركتنا   بجد ", CreatedAt: time.Now()},
	}))

	snap := svc.Restore(ctx)

	require.Len(t, snap.Advisor, 1)
	assert.Equal(t, "نعمل في الشركة القابضة بجد", snap.Advisor[0].Text)

	// Never saved: seeded with the first-run welcome.
	require.Len(t, snap.Repository, 1)
	assert.Equal(t, workspace.RepositoryWelcomeID, snap.Repository[0].Id)
	assert.Empty(t, snap.Sources)
}

func TestSyncClearAllPropagatesEmptySet(t *testing.T) {
	svc, m := newPersistence(t)
	ctx := context.Background()

	store := workspace.NewStore(nil)
	src, err := store.AddSource(workspace.NewSource{Name: "doc", Category: entity.CategoryRepository, Kind: entity.SourceKindText})
	require.NoError(t, err)
	_, err = store.Focus(src.Id)
	require.NoError(t, err)
	require.NoError(t, svc.Sync(ctx, store.Snapshot()))

	focus, err := svc.LoadFocus(ctx)
	require.NoError(t, err)
	assert.Equal(t, src.Id, focus)

	store.ClearAll()
	require.NoError(t, svc.Sync(ctx, store.Snapshot()))

	sources, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)

	focus, err = svc.LoadFocus(ctx)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, focus)

	snap := svc.Restore(ctx)
	require.Len(t, snap.Advisor, 1)
	require.Len(t, snap.Repository, 1)
	assert.Equal(t, workspace.AdvisorWelcomeID, snap.Advisor[0].Id)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SyncsTotal.WithLabelValues(metrics.OutcomeOK)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Sources.WithLabelValues("repository")))
}

func TestRestoreKeepsFocusForLoad(t *testing.T) {
	svc, _ := newPersistence(t)
	ctx := context.Background()
	sources := sampleSources()

	require.NoError(t, svc.ReplaceAll(ctx, sources))
	require.NoError(t, svc.SaveFocus(ctx, sources[1].Id))

	store := workspace.NewStore(nil)
	store.Load(svc.Restore(ctx))

	focused, ok := store.Focused()
	require.True(t, ok)
	assert.Equal(t, sources[1].Id, focused.Id)
}

func TestRestoreDropsFocusThatIsNotAStoredRepositorySource(t *testing.T) {
	svc, _ := newPersistence(t)
	ctx := context.Background()
	sources := sampleSources()
	require.NoError(t, svc.ReplaceAll(ctx, sources))

	for _, id := range []uuid.UUID{sources[0].Id, uuid.New()} {
		require.NoError(t, svc.SaveFocus(ctx, id))
		assert.Equal(t, uuid.Nil, svc.Restore(ctx).Focused)
	}
}

func TestSyncCountsStoredSourcesPerCategory(t *testing.T) {
	svc, m := newPersistence(t)
	ctx := context.Background()

	require.NoError(t, svc.Sync(ctx, workspace.Snapshot{Sources: sampleSources()}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sources.WithLabelValues("advisor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sources.WithLabelValues("repository")))
}
