package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateLogFilePath(t *testing.T) {
	at := time.Date(2023, 7, 2, 10, 4, 5, 6, time.UTC)
	assert.Equal(t, filepath.Join("logs", "20230702.100405.000000006.prod.log"), CreateLogFilePath("logs", true, at))
	assert.Equal(t, filepath.Join("logs", "20230702.100405.000000006.dev.log"), CreateLogFilePath("logs", false, at))
}

func TestRSyncWriter(t *testing.T) {
	config := DefaultConfig()
	config.LogFolder = t.TempDir()
	config.LogMaxSize = 1
	clock := &MockClocker{NewMockClocker().Now()}
	rsw := NewRSyncWriter(config, clock)
	defer rsw.Close()

	assert.NoError(t, rsw.Sync())

	n, err := rsw.Write([]byte("first entry\n"))
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	// a write going over the max size goes into a new file.
	clock.MockNow = clock.MockNow.Add(time.Second)
	_, err = rsw.Write(make([]byte, 1048576-5))
	require.NoError(t, err)

	entries, err := os.ReadDir(config.LogFolder)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = rsw.Write(make([]byte, 1048577))
	assert.Error(t, err)
	assert.NoError(t, rsw.Close())
}

func TestSetupLogging(t *testing.T) {
	config := DefaultConfig()
	config.IsProduction = true
	config.LogFolder = t.TempDir()
	config.GitCommit = "abc123"
	clock := NewMockClocker()
	rsw := NewRSyncWriter(config, clock)
	defer rsw.Close()

	logger, flusher := SetupLogging(config, rsw, clock)
	logger.Info("hello", zap.String("book.id", "1"))
	assert.NoError(t, flusher())

	entries, err := os.ReadDir(config.LogFolder)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(config.LogFolder, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"app.commit":"abc123"`)
	assert.Contains(t, string(data), `"ts":"2023-07-02T00:00:00.000Z"`)
}

func TestGetLoggerFromContext(t *testing.T) {
	api := newTestAPIHandler(NewMemoryBookStorage(), nil)
	assert.Same(t, api.logger, api.GetLoggerFromContext(context.Background()))

	logger := zap.NewNop()
	ctx := context.WithValue(context.Background(), LoggerContextKey, logger)
	assert.Same(t, logger, api.GetLoggerFromContext(ctx))
}
