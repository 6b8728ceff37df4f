package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	lines := []string{
		`{"level":"INFO","timestamp":"t1","message":"first","module":"Chat"}`,
		`not json`,
		`{"level":"WARN","timestamp":"t2","message":"second","module":"Speech"}`,
		`{"level":"INFO","timestamp":"t3","message":"third","module":"Speech"}`,
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	l := &ZapLogger{filePath: path}

	all, err := l.GetLogs(LogFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Message)
	assert.NotEmpty(t, all[0].Id)

	info, err := l.GetLogs(LogFilter{Level: "INFO"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, info, 2)

	speech, err := l.GetLogs(LogFilter{Module: "Speech"}, 1, 1)
	require.NoError(t, err)
	require.Len(t, speech, 1)
	assert.Equal(t, "second", speech[0].Message)

	none, err := l.GetLogs(LogFilter{}, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetLogsMissingFile(t *testing.T) {
	l := &ZapLogger{filePath: filepath.Join(t.TempDir(), "missing.log")}
	logs, err := l.GetLogs(LogFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
