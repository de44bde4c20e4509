package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/richxcame/commuter-agent/pkg/logger"
	redisclient "github.com/richxcame/commuter-agent/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testRegistration() Registration {
	return NewRegistration("commuter_agent_01", "commuter-agent", "http://0.0.0.0:8000/commuter-agent")
}

// ========================================
// REGISTRATION
// ========================================

func TestNewRegistration(t *testing.T) {
	reg := testRegistration()

	data, err := json.Marshal(reg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"agent_id":"commuter_agent_01",
		"agent_name":"commuter-agent",
		"api_url":"http://0.0.0.0:8000/commuter-agent",
		"capabilities":["route_planning","traffic_updates","travel_mode_suggestion","commute_optimization","navigation_assistance"],
		"status":"active"
	}`, string(data))

	reg.Capabilities[0] = "changed"
	assert.Equal(t, "route_planning", Capabilities[0])
}

// ========================================
// SUPERVISOR
// ========================================

func TestSupervisorRegistrar_Posts(t *testing.T) {
	var got Registration
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := NewSupervisorRegistrar(server.URL+"/register", time.Second).Register(context.Background(), testRegistration())

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/register", path)
	assert.Equal(t, testRegistration(), got)
}

func TestSupervisorRegistrar_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := NewSupervisorRegistrar(server.URL, time.Second).Register(context.Background(), testRegistration())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

// ========================================
// REDIS
// ========================================

func expectRegister(mock redismock.ClientMock, reg Registration, ttl time.Duration) {
	data, _ := json.Marshal(reg)
	mock.ExpectTxPipeline()
	mock.ExpectSet("commuter:agents:"+reg.AgentID, string(data), ttl).SetVal("OK")
	for _, capability := range reg.Capabilities {
		mock.ExpectSAdd("commuter:capabilities:"+capability, reg.AgentID).SetVal(1)
		mock.ExpectExpire("commuter:capabilities:"+capability, ttl*2).SetVal(true)
	}
	mock.ExpectTxPipelineExec()
}

func TestRedisRegistrar_Register(t *testing.T) {
	db, mock := redismock.NewClientMock()
	registrar := NewRedisRegistrar(&redisclient.Client{Client: db}, "commuter", 5*time.Minute)
	reg := testRegistration()

	expectRegister(mock, reg, 5*time.Minute)

	require.NoError(t, registrar.Register(context.Background(), reg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRegistrar_RegisterFails(t *testing.T) {
	db, _ := redismock.NewClientMock()
	registrar := NewRedisRegistrar(&redisclient.Client{Client: db}, "commuter", time.Minute)

	err := registrar.Register(context.Background(), testRegistration())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register agent atomically")
}

func TestRedisRegistrar_Unregister(t *testing.T) {
	db, mock := redismock.NewClientMock()
	registrar := NewRedisRegistrar(&redisclient.Client{Client: db}, "commuter", time.Minute)
	reg := testRegistration()

	mock.ExpectTxPipeline()
	mock.ExpectDel("commuter:agents:" + reg.AgentID).SetVal(1)
	for _, capability := range reg.Capabilities {
		mock.ExpectSRem("commuter:capabilities:"+capability, reg.AgentID).SetVal(1)
	}
	mock.ExpectTxPipelineExec()

	require.NoError(t, registrar.Unregister(context.Background(), reg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRegistrar_AgentsWithCapability(t *testing.T) {
	db, mock := redismock.NewClientMock()
	registrar := NewRedisRegistrar(&redisclient.Client{Client: db}, "commuter", time.Minute)

	mock.ExpectSMembers("commuter:capabilities:route_planning").SetVal([]string{"commuter_agent_01"})

	ids, err := registrar.AgentsWithCapability(context.Background(), "route_planning")
	require.NoError(t, err)
	assert.Equal(t, []string{"commuter_agent_01"}, ids)
}

func TestRedisRegistrar_CheckListed(t *testing.T) {
	db, mock := redismock.NewClientMock()
	registrar := NewRedisRegistrar(&redisclient.Client{Client: db}, "commuter", time.Minute)
	reg := testRegistration()

	for _, capability := range reg.Capabilities {
		mock.ExpectSMembers("commuter:capabilities:" + capability).SetVal([]string{"other_agent", reg.AgentID})
	}

	require.NoError(t, registrar.CheckListed(context.Background(), reg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRegistrar_CheckListedMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	registrar := NewRedisRegistrar(&redisclient.Client{Client: db}, "commuter", time.Minute)
	reg := testRegistration()

	mock.ExpectSMembers("commuter:capabilities:route_planning").SetVal([]string{reg.AgentID})
	mock.ExpectSMembers("commuter:capabilities:traffic_updates").SetVal([]string{})

	err := registrar.CheckListed(context.Background(), reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traffic_updates")
}

// ========================================
// NOTIFIER
// ========================================

type stubRegistrar struct {
	name  string
	err   error
	calls atomic.Int32
}

func (s *stubRegistrar) Name() string { return s.name }

func (s *stubRegistrar) Register(ctx context.Context, _ Registration) error {
	s.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	return s.err
}

func TestNotifier_RegisterAllContinuesPastFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := logger.SetForTest(zap.New(core))
	defer restore()

	failing := &stubRegistrar{name: "supervisor", err: errors.New("connection refused")}
	ok := &stubRegistrar{name: "redis"}

	err := NewNotifier(time.Second, failing, ok).RegisterAll(context.Background(), testRegistration())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, 1, logs.FilterMessage("Failed to register agent").Len())
	assert.Equal(t, 1, logs.FilterMessage("Agent registered").Len())
}

func TestNotifier_RegisterAsync(t *testing.T) {
	r := &stubRegistrar{name: "supervisor"}

	done := NewNotifier(time.Second, r).RegisterAsync(context.Background(), testRegistration())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("registration did not finish")
	}
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestStartHeartbeat(t *testing.T) {
	r := &stubRegistrar{name: "redis"}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartHeartbeat(ctx, r, testRegistration(), 5*time.Millisecond, time.Second)

	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop")
	}
}

func TestNotifier_NoRegistrars(t *testing.T) {
	assert.NoError(t, NewNotifier(time.Second).RegisterAll(context.Background(), testRegistration()))
}

// hangingRegistrar blocks until its context ends.
type hangingRegistrar struct {
	calls atomic.Int32
}

func (h *hangingRegistrar) Name() string { return "redis" }

func (h *hangingRegistrar) Register(ctx context.Context, _ Registration) error {
	h.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestStartHeartbeat_BoundsEachAttempt(t *testing.T) {
	r := &hangingRegistrar{}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartHeartbeat(ctx, r, testRegistration(), 5*time.Millisecond, 10*time.Millisecond)

	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop")
	}
}
