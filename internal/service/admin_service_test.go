package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"advisor-chat-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogReader struct {
	filter        logger.LogFilter
	limit, offset int
	entries       []logger.LogEntry
	err           error
}

func (f *fakeLogReader) GetLogs(filter logger.LogFilter, limit, offset int) ([]logger.LogEntry, error) {
	f.filter, f.limit, f.offset = filter, limit, offset
	return f.entries, f.err
}

func TestAdminGetLogsPaging(t *testing.T) {
	reader := &fakeLogReader{entries: []logger.LogEntry{{Id: "abc", Level: "WARN", Module: "SPEECH", Message: "no audio"}}}
	svc := NewAdminService(reader)

	res, err := svc.GetLogs(context.Background(), "warn", "SPEECH", 3, 20)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "abc", res[0].Id)
	assert.Equal(t, logger.LogFilter{Level: "WARN", Module: "SPEECH"}, reader.filter)
	assert.Equal(t, 20, reader.limit)
	assert.Equal(t, 40, reader.offset)

	_, err = svc.GetLogs(context.Background(), "", "", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 50, reader.limit)
	assert.Equal(t, 0, reader.offset)
}

func TestAdminGetLogsFailure(t *testing.T) {
	svc := NewAdminService(&fakeLogReader{err: errors.New("disk")})

	_, err := svc.GetLogs(context.Background(), "", "", 1, 10)
	assert.Equal(t, http.StatusInternalServerError, appErrorCode(t, err))
}
