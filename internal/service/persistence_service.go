package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/metrics"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/repository/contract"
	"advisor-chat-be/internal/repository/specification"
	"advisor-chat-be/internal/repository/unitofwork"
	"advisor-chat-be/internal/workspace"
	"advisor-chat-be/pkg/sanitizer"

	"github.com/google/uuid"
)

const (
	TranscriptKeyPrefix = "transcript:"
	FocusKey            = "workspace:focused_source"
)

func TranscriptKey(category entity.Category) string {
	return TranscriptKeyPrefix + string(category)
}

type IPersistenceService interface {
	ReplaceAll(ctx context.Context, sources []entity.Source) error
	GetAll(ctx context.Context) ([]entity.Source, error)
	SaveTranscript(ctx context.Context, category entity.Category, msgs []entity.Message) error
	// LoadTranscript reports found=false when the transcript was never saved.
	LoadTranscript(ctx context.Context, category entity.Category) ([]entity.Message, bool, error)
	SaveFocus(ctx context.Context, id uuid.UUID) error
	LoadFocus(ctx context.Context) (uuid.UUID, error)
	// Restore never fails: whatever cannot be read falls back to a fresh workspace.
	Restore(ctx context.Context) workspace.Snapshot
	Sync(ctx context.Context, snap workspace.Snapshot) error
}

type persistenceService struct {
	uowFactory unitofwork.RepositoryFactory
	kv         contract.KeyValueRepository
	metrics    *metrics.Metrics
	logger     logger.ILogger
	now        func() time.Time
}

func NewPersistenceService(uowFactory unitofwork.RepositoryFactory, kv contract.KeyValueRepository, m *metrics.Metrics, log logger.ILogger) IPersistenceService {
	return &persistenceService{
		uowFactory: uowFactory,
		kv:         kv,
		metrics:    m,
		logger:     log,
		now:        time.Now,
	}
}

func (s *persistenceService) ReplaceAll(ctx context.Context, sources []entity.Source) error {
	ptrs := make([]*entity.Source, len(sources))
	for i := range sources {
		ptrs[i] = &sources[i]
	}

	return s.uowFactory.InTransaction(ctx, func(uow unitofwork.UnitOfWork) error {
		if err := uow.SourceRepository().ReplaceAll(ctx, ptrs); err != nil {
			return fmt.Errorf("replace sources: %w", err)
		}
		return nil
	})
}

func (s *persistenceService) GetAll(ctx context.Context) ([]entity.Source, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := uow.SourceRepository().FindAll(ctx, specification.InStoredOrder())
	if err != nil {
		return nil, err
	}
	sources := make([]entity.Source, 0, len(found))
	for _, src := range found {
		sources = append(sources, *src)
	}
	return sources, nil
}

func (s *persistenceService) SaveTranscript(ctx context.Context, category entity.Category, msgs []entity.Message) error {
	if msgs == nil {
		msgs = []entity.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, TranscriptKey(category), string(data))
}

func (s *persistenceService) LoadTranscript(ctx context.Context, category entity.Category) ([]entity.Message, bool, error) {
	raw, found, err := s.kv.Get(ctx, TranscriptKey(category))
	if err != nil || !found {
		return nil, false, err
	}
	var msgs []entity.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, false, fmt.Errorf("decode %s transcript: %w", category, err)
	}
	return msgs, true, nil
}

func (s *persistenceService) SaveFocus(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return s.kv.Delete(ctx, FocusKey)
	}
	data, _ := json.Marshal(id.String())
	return s.kv.Set(ctx, FocusKey, string(data))
}

func (s *persistenceService) LoadFocus(ctx context.Context) (uuid.UUID, error) {
	raw, found, err := s.kv.Get(ctx, FocusKey)
	if err != nil || !found {
		return uuid.Nil, err
	}
	var idStr string
	if err := json.Unmarshal([]byte(raw), &idStr); err != nil {
		return uuid.Nil, fmt.Errorf("decode focus: %w", err)
	}
	return uuid.Parse(idStr)
}

func (s *persistenceService) Restore(ctx context.Context) workspace.Snapshot {
	var snap workspace.Snapshot

	sources, err := s.GetAll(ctx)
	if err != nil {
		s.logger.Error("PERSISTENCE", "Failed to load sources", map[string]interface{}{"error": err.Error()})
	}
	snap.Sources = sources

	for _, category := range entity.Categories {
		msgs, found, err := s.LoadTranscript(ctx, category)
		if err != nil {
			s.logger.Error("PERSISTENCE", "Failed to load transcript", map[string]interface{}{
				"category": category,
				"error":    err.Error(),
			})
		}
		if !found || err != nil {
			snap.SetTranscript(category, []entity.Message{workspace.FirstRunWelcome(category, s.now())})
			continue
		}
		for i := range msgs {
			msgs[i].Text = sanitizer.Sanitize(msgs[i].Text)
		}
		snap.SetTranscript(category, msgs)
	}

	focused, err := s.LoadFocus(ctx)
	if err != nil {
		s.logger.Warn("PERSISTENCE", "Failed to load focused source", map[string]interface{}{"error": err.Error()})
	}
	if focused != uuid.Nil && !s.isStoredRepositorySource(ctx, focused) {
		s.logger.Warn("PERSISTENCE", "Dropping focus on a source that is no longer stored", map[string]interface{}{
			"source_id": focused,
		})
		focused = uuid.Nil
	}
	snap.Focused = focused

	selected, err := s.uowFactory.NewUnitOfWork(ctx).SourceRepository().Count(ctx, specification.OnlySelected{})
	if err != nil {
		selected = -1
	}
	s.logger.Info("PERSISTENCE", "Workspace restored", map[string]interface{}{
		"sources":    len(snap.Sources),
		"selected":   selected,
		"advisor":    len(snap.Advisor),
		"repository": len(snap.Repository),
	})
	return snap
}

func (s *persistenceService) isStoredRepositorySource(ctx context.Context, id uuid.UUID) bool {
	n, err := s.uowFactory.NewUnitOfWork(ctx).SourceRepository().Count(ctx,
		specification.ByID{ID: id},
		specification.ByCategory{Category: entity.CategoryRepository},
	)
	return err == nil && n > 0
}

func (s *persistenceService) Sync(ctx context.Context, snap workspace.Snapshot) error {
	var errs []error

	if err := s.ReplaceAll(ctx, snap.Sources); err != nil {
		errs = append(errs, err)
	}
	for _, category := range entity.Categories {
		if err := s.SaveTranscript(ctx, category, snap.Transcript(category)); err != nil {
			errs = append(errs, fmt.Errorf("save %s transcript: %w", category, err))
		}
	}
	if err := s.SaveFocus(ctx, snap.Focused); err != nil {
		errs = append(errs, fmt.Errorf("save focus: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		s.metrics.RecordSync(metrics.OutcomeFailed)
		return err
	}

	s.metrics.RecordSync(metrics.OutcomeOK)
	repo := s.uowFactory.NewUnitOfWork(ctx).SourceRepository()
	for _, category := range entity.Categories {
		n, err := repo.Count(ctx, specification.ByCategory{Category: category})
		if err != nil {
			s.logger.Warn("PERSISTENCE", "Failed to count stored sources", map[string]interface{}{
				"category": category,
				"error":    err.Error(),
			})
			continue
		}
		s.metrics.SetSources(string(category), int(n))
	}
	return nil
}
