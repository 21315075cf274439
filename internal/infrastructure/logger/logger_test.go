package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		l, err := New(Config{Level: "debug", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("tees extra cores", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		l, err := New(Config{Level: "info", Format: "console", Output: "stderr"}, core)
		require.NoError(t, err)

		l.Info("hello")
		assert.Equal(t, 1, recorded.FilterMessage("hello").Len())
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wms.log")
		l, err := New(Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)
		l.Info("to file")
		require.NoError(t, l.Sync())
		assert.FileExists(t, path)
	})

	t.Run("unwritable file", func(t *testing.T) {
		_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "wms.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestFromContext(t *testing.T) {
	t.Run("no logger yields nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("enriches with request and user", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := WithLogger(context.Background(), zap.New(core))
		ctx = WithRequestID(ctx, "req-1")
		ctx = WithUserID(ctx, "user-1")

		FromContext(ctx).Info("enriched")

		entries := recorded.All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "user-1", fields["user_id"])
		assert.Equal(t, "req-1", GetRequestID(ctx))
		assert.Equal(t, "user-1", GetUserID(ctx))
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "test-req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/parcels", func(c *gin.Context) {
		c.Set(GinUserIDKey, "u-1")
		assert.Equal(t, "test-req-123", GetRequestID(c.Request.Context()))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/parcels?page=2", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	logs := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, logs, 2)

	first := logs[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
	assert.Equal(t, "test-req-123", first["request_id"])
	assert.Equal(t, "u-1", first["user_id"])
	assert.Equal(t, "page=2", first["query"])
	assert.Equal(t, int64(http.StatusOK), first["status"])

	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"ERR_INTERNAL"`)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGormLogger_Trace(t *testing.T) {
	newLogger := func(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
		core, recorded := observer.New(zapcore.DebugLevel)
		return NewGormLogger(zap.New(core), level, 50*time.Millisecond), recorded
	}
	query := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("record not found is silent", func(t *testing.T) {
		l, recorded := newLogger(gormlogger.Info)
		l.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("errors are logged", func(t *testing.T) {
		l, recorded := newLogger(gormlogger.Warn)
		l.Trace(context.Background(), time.Now(), query, errors.New("connection reset"))
		require.Equal(t, 1, recorded.FilterMessage("SQL error").Len())
	})

	t.Run("slow query warns", func(t *testing.T) {
		l, recorded := newLogger(gormlogger.Warn)
		ctx := WithRequestID(context.Background(), "r-9")
		l.Trace(ctx, time.Now().Add(-time.Second), query, nil)

		logs := recorded.FilterMessage("Slow SQL").All()
		require.Len(t, logs, 1)
		assert.Equal(t, "r-9", logs[0].ContextMap()["request_id"])
	})

	t.Run("fast query only at info", func(t *testing.T) {
		l, recorded := newLogger(gormlogger.Warn)
		l.Trace(context.Background(), time.Now(), query, nil)
		assert.Zero(t, recorded.Len())

		verbose := l.LogMode(gormlogger.Info).(*GormLogger)
		verbose.Trace(context.Background(), time.Now(), query, nil)
		assert.Equal(t, 1, recorded.FilterMessage("SQL").Len())
	})

	t.Run("silent", func(t *testing.T) {
		l, recorded := newLogger(gormlogger.Silent)
		l.Trace(context.Background(), time.Now(), query, errors.New("x"))
		assert.Zero(t, recorded.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
}
