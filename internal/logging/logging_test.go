package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshat120/Book-Review-API/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(config.Logging{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = NewLogger(config.Logging{Level: "nonsense", Format: "yaml"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.Logging{Level: "info", Format: "json"})
	logger.SetOutput(&buf)

	router := gin.New()
	router.Use(RequestIDMiddleware(), RequestLogger(logger))
	router.GET("/missing", func(c *gin.Context) {
		FromContext(c).Info("handler ran")
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var handlerLine, requestLine map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &handlerLine))
	require.NoError(t, json.Unmarshal(lines[1], &requestLine))

	assert.Equal(t, "req-1", handlerLine["request_id"])
	assert.Equal(t, "request completed", requestLine["msg"])
	assert.Equal(t, "warning", requestLine["level"])
	assert.Equal(t, "/missing", requestLine["path"])
	assert.Equal(t, float64(http.StatusNotFound), requestLine["status"])
}

func TestTaskLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.Logging{Format: "json"})
	logger.SetOutput(&buf)

	NewTaskLogger(logger).Info("task processed", "queue", "record_audit_event", "attempt", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "tasks", line["component"])
	assert.Equal(t, "record_audit_event", line["queue"])
	assert.Equal(t, float64(2), line["attempt"])
}

func TestPairs_OddParams(t *testing.T) {
	fields := pairs([]any{"a", 1, 2, "b", "dangling"})
	assert.Equal(t, 1, fields["a"])
	assert.Equal(t, "dangling", fields["extra"])
	assert.NotContains(t, fields, "b")
}
