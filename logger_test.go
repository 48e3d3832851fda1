package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	auth "github.com/goliatone/go-person-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogger_WritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := auth.NewJSONLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("login", "user_id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "login", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, float64(7), rec["user_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, auth.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, auth.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, auth.ParseLevel("loud"))
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		l := auth.NopLogger()
		l.Debug("a")
		l.Info("b")
		l.Warn("c")
		l.Error("d")
	})
}

func TestLoggerActivitySink(t *testing.T) {
	logger := &captureLogger{}
	sink := auth.NewLoggerActivitySink(logger)

	err := sink.Record(context.Background(), auth.ActivityEvent{
		EventType:  auth.ActivityEventCodeIssued,
		Actor:      auth.ActorRef{ID: "7", Type: auth.KindUser},
		UserID:     7,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, logger.has("info", "activity"))
}

func TestMultiActivitySink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	failing := auth.ActivitySinkFunc(func(context.Context, auth.ActivityEvent) error {
		return errors.New("boom")
	})

	sink := auth.MultiActivitySink(a, nil, failing, b)
	err := sink.Record(context.Background(), auth.ActivityEvent{EventType: auth.ActivityEventPersonCreated})

	assert.EqualError(t, err, "boom")
	assert.Len(t, a.types(), 1)
	assert.Len(t, b.types(), 1)
}
