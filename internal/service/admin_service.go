package service

import (
	"context"
	"strings"

	"advisor-chat-be/internal/dto"
	"advisor-chat-be/internal/pkg/apperror"
	"advisor-chat-be/internal/pkg/logger"
)

// LogReader is the part of the logger the admin log viewer needs.
type LogReader interface {
	GetLogs(filter logger.LogFilter, limit, offset int) ([]logger.LogEntry, error)
}

type IAdminService interface {
	GetLogs(ctx context.Context, level, module string, page, limit int) ([]dto.LogListResponse, error)
}

type adminService struct {
	logs LogReader
}

func NewAdminService(logs LogReader) IAdminService {
	return &adminService{logs: logs}
}

func (s *adminService) GetLogs(ctx context.Context, level, module string, page, limit int) ([]dto.LogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	filter := logger.LogFilter{Level: strings.ToUpper(level), Module: module}
	entries, err := s.logs.GetLogs(filter, limit, (page-1)*limit)
	if err != nil {
		return nil, apperror.Internal("Failed to read logs", err)
	}

	res := make([]dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, dto.LogListResponse{
			Id:        e.Id,
			Level:     e.Level,
			Module:    e.Module,
			Message:   e.Message,
			Timestamp: e.Timestamp,
			Details:   e.Details,
		})
	}
	return res, nil
}
