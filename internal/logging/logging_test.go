package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/newsroom-tools/newsletter-backend/internal/database/dbtest"
	"github.com/newsroom-tools/newsletter-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	level   slog.Level
	records []slog.Record
}

func (r *recordingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= r.level }
func (r *recordingHandler) Handle(_ context.Context, rec slog.Record) error {
	r.records = append(r.records, rec)
	return nil
}
func (r *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recordingHandler) WithGroup(string) slog.Handler      { return r }

func TestDBHandler_PersistsErrors(t *testing.T) {
	db := dbtest.New(t)
	handler := NewDBHandler(db, time.Hour)

	logger := slog.New(handler).With("request_id", "req-1")
	logger.Info("ignored")
	logger.Error("render failed",
		"user_id", 7, "newsletter_id", 3, "action", "render", "error", "boom", "attempt", 2)
	handler.Stop()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Len(t, entry.ID, 36)
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "render failed", entry.Message)
	assert.Equal(t, "req-1", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "7", *entry.UserID)
	require.NotNil(t, entry.NewsletterID)
	assert.Equal(t, "3", *entry.NewsletterID)
	assert.Equal(t, "render", entry.Action)
	assert.Equal(t, "boom", entry.Error)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.EqualValues(t, 2, extra["attempt"])
}

func TestPurgeBefore(t *testing.T) {
	db := dbtest.New(t)
	now := time.Now()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{ID: "old", Timestamp: now.Add(-31 * 24 * time.Hour), Level: "ERROR"},
		{ID: "new", Timestamp: now, Level: "ERROR"},
	}).Error)

	deleted, err := PurgeBefore(db, now.Add(-retention))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].ID)
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	info := &recordingHandler{level: slog.LevelInfo}
	errs := &recordingHandler{level: slog.LevelError}
	logger := slog.New(NewMultiHandler(info, errs))

	logger.Debug("dropped")
	logger.Info("one")
	logger.Error("two")

	assert.Len(t, info.records, 2)
	assert.Len(t, errs.records, 1)
}
