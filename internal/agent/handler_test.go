package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/commuter-agent/internal/commuter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ========================================
// MOCK: QueryProcessor
// ========================================

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) ProcessQuery(ctx context.Context, query string) (commuter.Payload, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(commuter.Payload), args.Error(1)
}

type blockingProcessor struct {
	release chan struct{}
}

func (b *blockingProcessor) ProcessQuery(context.Context, string) (commuter.Payload, error) {
	<-b.release
	return &commuter.GeneralResponse{Type: commuter.TypeGeneralResponse}, nil
}

type panickingProcessor struct{}

func (panickingProcessor) ProcessQuery(context.Context, string) (commuter.Payload, error) {
	panic("boom")
}

// ========================================
// HELPERS
// ========================================

func setupRouter(processor QueryProcessor, timeout time.Duration) *gin.Engine {
	r := gin.New()
	NewHandler(NewPipeline(processor), timeout).RegisterRoutes(r)
	return r
}

func postAgent(t *testing.T, r *gin.Engine, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/commuter-agent", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func assertFailure(t *testing.T, resp map[string]interface{}, message string) {
	t.Helper()
	assert.Equal(t, Name, resp["agent_name"])
	assert.Equal(t, StatusError, resp["status"])
	assert.Nil(t, resp["data"])
	assert.Equal(t, message, resp["error_message"])
}

// ========================================
// INFO / HEALTH
// ========================================

func TestInfo(t *testing.T) {
	r := setupRouter(new(mockProcessor), 0)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "commuter-agent", resp["agent_name"])
	assert.Equal(t, "running", resp["status"])
	assert.Equal(t, "1.0.0", resp["version"])
	assert.Equal(t, map[string]interface{}{"health": "/health", "agent": "/commuter-agent"}, resp["endpoints"])
	assert.Equal(t, description, resp["description"])
}

func TestHealth(t *testing.T) {
	r := setupRouter(new(mockProcessor), 0)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","agent_name":"commuter-agent","ready":true}`, w.Body.String())
}

// ========================================
// POST /commuter-agent
// ========================================

func TestHandleQuery_EndToEndGeneral(t *testing.T) {
	r := setupRouter(commuter.New(nil), time.Second)

	code, resp := postAgent(t, r, `{"messages":[{"role":"user","content":"hello"}]}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusSuccess, resp["status"])
	assert.Nil(t, resp["error_message"])
	message := resp["data"].(map[string]interface{})["message"].(map[string]interface{})
	assert.Equal(t, commuter.TypeGeneralResponse, message["type"])
	assert.Contains(t, message["message"], "route planning")
}

func TestHandleQuery_EndToEndMockRoutes(t *testing.T) {
	r := setupRouter(commuter.New(nil), time.Second)

	_, resp := postAgent(t, r, `{"messages":[{"role":"user","content":"What's the best route to the airport?"}]}`)

	require.Equal(t, StatusSuccess, resp["status"])
	message := resp["data"].(map[string]interface{})["message"].(map[string]interface{})
	assert.Equal(t, commuter.TypeRouteRecommendation, message["type"])
	routes := message["routes"].([]interface{})
	require.Len(t, routes, 3)
	first := routes[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "Fastest route via Highway A", first["description"])
	assert.Equal(t, "Moderate", first["traffic"])
}

func TestHandleQuery_EndToEndMockModes(t *testing.T) {
	r := setupRouter(commuter.New(nil), time.Second)

	code, resp := postAgent(t, r, `{"messages":[{"role":"user","content":"how should I travel from home to work?"}]}`)

	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, StatusSuccess, resp["status"])
	assert.Nil(t, resp["error_message"])
	message := resp["data"].(map[string]interface{})["message"].(map[string]interface{})
	assert.Equal(t, commuter.TypeTravelModeSuggestion, message["type"])
	assert.Len(t, message["modes"].([]interface{}), 4)
}

func TestHandleQuery_UsesLatestUserMessage(t *testing.T) {
	processor := new(mockProcessor)
	payload := &commuter.GeneralResponse{Type: commuter.TypeGeneralResponse, Message: "ok"}
	processor.On("ProcessQuery", mock.Anything, "route to the airport").Return(payload, nil).Once()
	r := setupRouter(processor, time.Second)

	_, resp := postAgent(t, r, `{"messages":[
		{"role":"user","content":"hello"},
		{"role":"assistant","content":"hi, where to?"},
		{"role":"user","content":"route to the airport"},
		{"role":"system","content":"be brief"}
	]}`)

	assert.Equal(t, StatusSuccess, resp["status"])
	processor.AssertExpectations(t)
}

func TestHandleQuery_InputErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		prefix  bool
	}{
		{name: "empty list", body: `{"messages":[]}`, message: MsgNoMessages},
		{name: "no user message", body: `{"messages":[{"role":"assistant","content":"hi"}]}`, message: MsgNoUserMessage},
		{name: "empty user content", body: `{"messages":[{"role":"user","content":""}]}`, message: MsgNoUserMessage},
		{name: "unknown role", body: `{"messages":[{"role":"robot","content":"hi"}]}`, message: MsgInvalidFormat, prefix: true},
		{name: "role is case sensitive", body: `{"messages":[{"role":"User","content":"hi"}]}`, message: MsgInvalidFormat, prefix: true},
		{name: "missing messages", body: `{}`, message: MsgInvalidFormat, prefix: true},
		{name: "malformed json", body: `{"messages":`, message: MsgInvalidFormat, prefix: true},
		{name: "wrong type", body: `{"messages":"hello"}`, message: MsgInvalidFormat, prefix: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := new(mockProcessor)
			r := setupRouter(processor, time.Second)

			code, resp := postAgent(t, r, tt.body)

			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, StatusError, resp["status"])
			assert.Nil(t, resp["data"])
			if tt.prefix {
				msg, _ := resp["error_message"].(string)
				assert.True(t, strings.HasPrefix(msg, tt.message), msg)
			} else {
				assertFailure(t, resp, tt.message)
			}
			processor.AssertNotCalled(t, "ProcessQuery", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleQuery_ProcessorError(t *testing.T) {
	processor := new(mockProcessor)
	processor.On("ProcessQuery", mock.Anything, "hello").Return(nil, errors.New("context canceled")).Once()
	r := setupRouter(processor, time.Second)

	_, resp := postAgent(t, r, `{"messages":[{"role":"user","content":"hello"}]}`)

	assertFailure(t, resp, "context canceled")
}

func TestHandleQuery_Timeout(t *testing.T) {
	processor := &blockingProcessor{release: make(chan struct{})}
	defer close(processor.release)
	r := setupRouter(processor, 20*time.Millisecond)

	start := time.Now()
	_, resp := postAgent(t, r, `{"messages":[{"role":"user","content":"hello"}]}`)

	assertFailure(t, resp, MsgTimedOut)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHandleQuery_Panic(t *testing.T) {
	r := setupRouter(panickingProcessor{}, time.Second)

	code, resp := postAgent(t, r, `{"messages":[{"role":"user","content":"hello"}]}`)

	assert.Equal(t, http.StatusOK, code)
	assertFailure(t, resp, MsgInternalPrefix+"boom")
}

func TestNewHandler_DefaultTimeout(t *testing.T) {
	h := NewHandler(NewPipeline(new(mockProcessor)), 0)
	assert.Equal(t, DefaultTimeout, h.timeout)
}
