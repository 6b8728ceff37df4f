package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"advisor-chat-be/internal/constant"
	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/metrics"
	"advisor-chat-be/internal/pkg/apperror"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/websocket"
	"advisor-chat-be/internal/workspace"
	"advisor-chat-be/pkg/events"
	"advisor-chat-be/pkg/extract"

	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20

type ISourceService interface {
	List(ctx context.Context, category entity.Category) ([]entity.Source, error)
	AddFile(ctx context.Context, category entity.Category, file *multipart.FileHeader) (entity.Source, error)
	AddLink(ctx context.Context, category entity.Category, req *dto.AddLinkRequest) (entity.Source, error)
	AddText(ctx context.Context, category entity.Category, req *dto.AddTextRequest) (entity.Source, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateSourceRequest) (entity.Source, error)
	Toggle(ctx context.Context, id uuid.UUID) (entity.Source, error)
	Remove(ctx context.Context, id uuid.UUID) error
	ClearAll(ctx context.Context) error
}

// LinkTitleFunc resolves the display name of a link source.
type LinkTitleFunc func(ctx context.Context, url string) (string, error)

type sourceService struct {
	store       *workspace.Store
	broadcaster websocket.Broadcaster
	publisher   events.Publisher
	linkTitle   LinkTitleFunc
	metrics     *metrics.Metrics
	logger      logger.ILogger
	now         func() time.Time
}

// NewSourceService builds the document store service. A nil linkTitle keeps the
// default link name.
func NewSourceService(
	store *workspace.Store,
	broadcaster websocket.Broadcaster,
	publisher events.Publisher,
	linkTitle LinkTitleFunc,
	m *metrics.Metrics,
	log logger.ILogger,
) ISourceService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &sourceService{
		store:       store,
		broadcaster: broadcaster,
		publisher:   publisher,
		linkTitle:   linkTitle,
		metrics:     m,
		logger:      log,
		now:         time.Now,
	}
}

// DetectKind classifies an upload: PDF by media type or extension, spreadsheet by
// extension, text otherwise.
func DetectKind(filename, mediaType string) entity.SourceKind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case mediaType == "application/pdf" || ext == ".pdf":
		return entity.SourceKindPDF
	case ext == ".xlsx" || ext == ".xls":
		return entity.SourceKindSpreadsheet
	default:
		return entity.SourceKindText
	}
}

func displayName(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

func (s *sourceService) spreadsheetContent(name string, data []byte) string {
	text, err := extract.SpreadsheetText(data)
	if err != nil {
		s.logger.Warn("SOURCE", "Spreadsheet not readable, keeping raw workbook", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
		return base64.StdEncoding.EncodeToString(data)
	}
	return text
}

func (s *sourceService) add(ctx context.Context, n workspace.NewSource) (entity.Source, error) {
	if err := validCategory(n.Category); err != nil {
		return entity.Source{}, err
	}
	src, err := s.store.AddSource(n)
	if err != nil {
		return entity.Source{}, workspaceError(err)
	}

	s.logger.Info("SOURCE", "Source added", map[string]interface{}{
		"source_id": src.Id,
		"name":      src.Name,
		"kind":      src.Kind,
		"category":  src.Category,
		"bytes":     len(src.Content),
	})
	s.changed(ctx, src.Category, events.SourceAdded, map[string]interface{}{
		"source_id": src.Id.String(),
		"name":      src.Name,
		"kind":      string(src.Kind),
		"category":  string(src.Category),
	})
	return src, nil
}

// changed refreshes the sources gauge, tells clients and publishes the domain event.
func (s *sourceService) changed(ctx context.Context, category entity.Category, eventType string, payload map[string]interface{}) {
	for _, c := range entity.Categories {
		if category == "" || c == category {
			s.metrics.SetSources(string(c), len(s.store.Sources(c)))
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(websocket.EventWorkspaceChanged, nil)
	}
	if eventType == "" {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, payload)); err != nil {
		s.logger.Warn("SOURCE", "Failed to publish source event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func (s *sourceService) List(ctx context.Context, category entity.Category) ([]entity.Source, error) {
	if err := validCategory(category); err != nil {
		return nil, err
	}
	return s.store.Sources(category), nil
}

func (s *sourceService) AddFile(ctx context.Context, category entity.Category, file *multipart.FileHeader) (entity.Source, error) {
	if file == nil {
		return entity.Source{}, apperror.BadRequest("File is required", nil)
	}
	if file.Size > maxUploadBytes {
		return entity.Source{}, apperror.BadRequest("File is too large", nil)
	}

	f, err := file.Open()
	if err != nil {
		return entity.Source{}, apperror.BadRequest("Unable to read file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return entity.Source{}, apperror.BadRequest("Unable to read file", err)
	}

	mediaType := file.Header.Get("Content-Type")
	kind := DetectKind(file.Filename, mediaType)
	name := displayName(file.Filename)

	var content string
	switch kind {
	case entity.SourceKindPDF:
		content = base64.StdEncoding.EncodeToString(data)
	case entity.SourceKindSpreadsheet:
		content = s.spreadsheetContent(name, data)
	default:
		content = string(data)
	}

	return s.add(ctx, workspace.NewSource{
		Name:      name,
		Kind:      kind,
		Category:  category,
		Content:   content,
		MediaType: mediaType,
	})
}

func (s *sourceService) AddLink(ctx context.Context, category entity.Category, req *dto.AddLinkRequest) (entity.Source, error) {
	url := strings.TrimSpace(req.Url)
	if url == "" {
		return entity.Source{}, apperror.BadRequest("Url is required", nil)
	}

	name := constant.DefaultLinkSourceName
	if s.linkTitle != nil {
		if title, err := s.linkTitle(ctx, url); err == nil && title != "" {
			name = title
		} else if err != nil {
			s.logger.Debug("SOURCE", "Link title lookup failed", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
		}
	}

	return s.add(ctx, workspace.NewSource{
		Name:      name,
		Kind:      entity.SourceKindLink,
		Category:  category,
		Content:   url,
		MediaType: constant.LinkMediaType,
	})
}

func (s *sourceService) AddText(ctx context.Context, category entity.Category, req *dto.AddTextRequest) (entity.Source, error) {
	if strings.TrimSpace(req.Text) == "" {
		return entity.Source{}, apperror.BadRequest("Text is required", nil)
	}

	return s.add(ctx, workspace.NewSource{
		Name:      fmt.Sprintf(constant.ManualTextNameFormat, s.now().Format("15:04:05")),
		Kind:      entity.SourceKindText,
		Category:  category,
		Content:   req.Text,
		MediaType: "text/plain",
	})
}

func (s *sourceService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateSourceRequest) (entity.Source, error) {
	theme := entity.Theme(req.Theme)
	if !theme.Valid() {
		return entity.Source{}, apperror.BadRequest("Invalid theme", nil)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return entity.Source{}, apperror.BadRequest("Name is required", nil)
	}

	src, err := s.store.UpdateSource(id, name, theme)
	if err != nil {
		return entity.Source{}, workspaceError(err)
	}
	s.changed(ctx, src.Category, "", nil)
	return src, nil
}

func (s *sourceService) Toggle(ctx context.Context, id uuid.UUID) (entity.Source, error) {
	src, err := s.store.ToggleSelected(id)
	if err != nil {
		return entity.Source{}, workspaceError(err)
	}
	s.changed(ctx, src.Category, "", nil)
	return src, nil
}

func (s *sourceService) Remove(ctx context.Context, id uuid.UUID) error {
	src, err := s.store.RemoveSource(id)
	if err != nil {
		return workspaceError(err)
	}

	s.logger.Info("SOURCE", "Source removed", map[string]interface{}{
		"source_id": src.Id,
		"name":      src.Name,
	})
	s.changed(ctx, src.Category, events.SourceRemoved, map[string]interface{}{
		"source_id": src.Id.String(),
		"category":  string(src.Category),
	})
	return nil
}

func (s *sourceService) ClearAll(ctx context.Context) error {
	s.store.ClearAll()
	s.logger.Info("SOURCE", "Workspace cleared", nil)
	s.changed(ctx, "", events.WorkspaceCleared, map[string]interface{}{})
	return nil
}
