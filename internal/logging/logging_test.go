package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	var info, errs bytes.Buffer
	multi := NewMultiHandler(
		NewJSONHandler(&info, slog.LevelInfo),
		NewJSONHandler(&errs, slog.LevelError),
	)
	log := slog.New(multi).With("request_id", "abc")

	log.Info("hello")
	log.Error("boom")

	assert.Equal(t, 2, bytes.Count(info.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(errs.Bytes(), []byte("\n")))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(errs.Bytes()), &rec))
	assert.Equal(t, "boom", rec["msg"])
	assert.Equal(t, "abc", rec["request_id"])
}

func TestMultiHandlerKeepsGoingAfterFailure(t *testing.T) {
	var out bytes.Buffer
	multi := NewMultiHandler(
		failingHandler{NewJSONHandler(&out, slog.LevelInfo)},
		NewJSONHandler(&out, slog.LevelInfo),
	)

	err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0))
	assert.EqualError(t, err, "sink down")
	assert.Contains(t, out.String(), `"msg":"msg"`)
}

func TestPGHandlerOnlyTakesErrors(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewPGHandler(db, PGOptions{FlushInterval: time.Hour})
	defer h.Stop()

	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPGHandlerFlushesOnStop(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "system_logs"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	h := NewPGHandler(db, PGOptions{FlushInterval: time.Hour})
	log := slog.New(h).With("request_id", "req-1")
	log.Error("first", "method", "GET", "path", "/api/kv", "error", "boom", "latency_ms", 12.4)
	log.Error("second", "status", 500)

	h.Stop()
	h.Stop()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGHandlerMapsAttributes(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewPGHandler(db, PGOptions{FlushInterval: time.Hour})
	defer h.Stop()

	rec := slog.NewRecord(time.Now(), slog.LevelError, "failed", 0)
	rec.AddAttrs(
		slog.String("request_id", "req-9"),
		slog.String("user_id", "u-1"),
		slog.String("method", "POST"),
		slog.String("path", "/api/events"),
		slog.String("error", "boom"),
		slog.Duration("latency_ms", 1500*time.Millisecond),
		slog.Int("status", 500),
	)
	require.NoError(t, h.WithAttrs([]slog.Attr{slog.String("component", "http")}).Handle(context.Background(), rec))

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	require.Len(t, h.sink.buffer, 1)
	entry := h.sink.buffer[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "req-9", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "POST", entry.Method)
	assert.Equal(t, "/api/events", entry.Path)
	assert.Equal(t, "boom", entry.Error)
	assert.Equal(t, 1500, entry.LatencyMs)
	assert.JSONEq(t, `{"component":"http","status":500}`, string(entry.Extra))
}

func TestCleanupDeletesOldRows(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "system_logs" WHERE timestamp < $1`)).
		WithArgs(now.Add(-DefaultRetention)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := Cleanup(context.Background(), db, 0, now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
