package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/commuter-agent/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCorrelationIDGeneratesWhenMissing(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = logger.CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationIDKeepsValidHeader(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetCorrelationID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "orchestrator-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "orchestrator-42", w.Body.String())
	assert.Equal(t, "orchestrator-42", w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationIDReplacesUnsafeHeader(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "bad id\nwith newline")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEqual(t, "bad id\nwith newline", w.Header().Get(CorrelationIDHeader))
	assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))
}

func TestCORSAllowsAnyOriginByDefault(t *testing.T) {
	router := gin.New()
	router.Use(CORS("*"))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://orchestrator.local")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	router := gin.New()
	router.Use(CORS("http://allowed.local"))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.local")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestLoggerLogsBody(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	restore := logger.SetForTest(zap.New(core))
	defer restore()

	router := gin.New()
	router.Use(RequestLogger("commuter-agent"))
	router.POST("/commuter-agent", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	body := bytes.NewBufferString(`{"messages":[{"role":"user","content":"<b>traffic</b>"}]}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/commuter-agent", body))

	entries := recorded.FilterMessage("Request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/commuter-agent", fields["path"])
	assert.NotContains(t, fields["request_body"], "<b>")
	assert.Contains(t, fields["response_body"], "success")
}

func TestRequestLoggerAddsTraceID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	restore := logger.SetForTest(zap.New(core))
	defer restore()

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0xab, 0xcd},
		SpanID:     trace.SpanID{0x01},
		TraceFlags: trace.FlagsSampled,
	})

	router := gin.New()
	router.Use(RequestLogger("commuter-agent"))
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), sc))
		c.Next()
	})
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	entries := recorded.FilterMessage("Request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, sc.TraceID().String(), entries[0].ContextMap()["trace_id"])
}

func TestRequestLoggerSkipsHealthAtInfo(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	restore := logger.SetForTest(zap.New(core))
	defer restore()

	router := gin.New()
	router.Use(RequestLogger("commuter-agent"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 0, recorded.Len())
}

func TestSanitizePayloadTruncates(t *testing.T) {
	long := strings.Repeat("a", maxPayloadLength+10)
	got := sanitizePayload([]byte(long))
	assert.True(t, strings.HasSuffix(got, "...(truncated)"))
	assert.Empty(t, sanitizePayload(nil))
}

func TestRecoveryWithSentryAnswers500(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryWithSentry())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(Metrics("commuter-agent"))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
