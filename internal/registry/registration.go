package registry

import (
	"context"
	"errors"
	"time"

	"github.com/richxcame/commuter-agent/pkg/async"
	"github.com/richxcame/commuter-agent/pkg/logger"
	"github.com/richxcame/commuter-agent/pkg/tracing"
	"go.uber.org/zap"
)

const tracerName = "commuter-agent/registry"

// StatusActive is the status advertised at startup.
const StatusActive = "active"

// Capabilities are the capability tags this agent advertises.
var Capabilities = []string{
	"route_planning",
	"traffic_updates",
	"travel_mode_suggestion",
	"commute_optimization",
	"navigation_assistance",
}

// Registration is the record sent to the orchestrator.
type Registration struct {
	AgentID      string   `json:"agent_id"`
	AgentName    string   `json:"agent_name"`
	APIURL       string   `json:"api_url"`
	Capabilities []string `json:"capabilities"`
	Status       string   `json:"status"`
}

// NewRegistration builds an active registration with the default capabilities.
func NewRegistration(agentID, agentName, apiURL string) Registration {
	caps := make([]string, len(Capabilities))
	copy(caps, Capabilities)
	return Registration{
		AgentID:      agentID,
		AgentName:    agentName,
		APIURL:       apiURL,
		Capabilities: caps,
		Status:       StatusActive,
	}
}

// Registrar delivers a registration to one destination.
type Registrar interface {
	Name() string
	Register(ctx context.Context, reg Registration) error
}

// Notifier fans a registration out to every registrar. Failures are logged
// and counted, never retried.
type Notifier struct {
	registrars []Registrar
	timeout    time.Duration
}

// NewNotifier creates a notifier. Each registrar call is bounded by timeout.
func NewNotifier(timeout time.Duration, registrars ...Registrar) *Notifier {
	return &Notifier{registrars: registrars, timeout: timeout}
}

// RegisterAll registers with every destination in order and returns the
// joined failures.
func (n *Notifier) RegisterAll(ctx context.Context, reg Registration) error {
	var errs []error
	for _, r := range n.registrars {
		if err := n.registerOne(ctx, r, reg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RegisterAsync runs RegisterAll in the background, detached from the
// cancellation of ctx. The returned channel is closed when every registrar has
// finished.
func (n *Notifier) RegisterAsync(ctx context.Context, reg Registration) <-chan struct{} {
	return async.Go(ctx, "agent-registration", func(taskCtx context.Context) {
		_ = n.RegisterAll(taskCtx, reg)
	})
}

func (n *Notifier) registerOne(ctx context.Context, r Registrar, reg Registration) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	start := time.Now()
	err := tracing.TraceExternalAPI(ctx, tracerName, r.Name(), "register", func(ctx context.Context) error {
		tracing.AddSpanAttributes(ctx,
			tracing.AgentIDKey.String(reg.AgentID),
			tracing.CapabilitiesKey.StringSlice(reg.Capabilities),
		)
		return r.Register(ctx, reg)
	})
	recordRegistration(r.Name(), err, time.Since(start))

	if err != nil {
		logger.ErrorContext(ctx, "Failed to register agent",
			zap.String("registrar", r.Name()),
			zap.String("agent_id", reg.AgentID),
			zap.Error(err),
		)
		return err
	}

	logger.InfoContext(ctx, "Agent registered",
		zap.String("registrar", r.Name()),
		zap.String("agent_id", reg.AgentID),
		zap.String("api_url", reg.APIURL),
	)
	return nil
}

// StartHeartbeat re-registers with r every interval until ctx is cancelled.
// For the Redis registrar this refreshes the record TTL and recreates the
// record if it expired. Each attempt is bounded by timeout when it is positive.
// The returned channel is closed once the loop exits.
func StartHeartbeat(ctx context.Context, r Registrar, reg Registration, interval, timeout time.Duration) <-chan struct{} {
	ticker := time.NewTicker(interval)
	return async.Go(ctx, "registry-heartbeat", func(taskCtx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				err := heartbeatOnce(ctx, r, reg, timeout)
				recordRegistration(r.Name(), err, time.Since(start))
				if err != nil && ctx.Err() == nil {
					logger.WarnContext(taskCtx, "Registry heartbeat failed",
						zap.String("registrar", r.Name()),
						zap.String("agent_id", reg.AgentID),
						zap.Error(err),
					)
				}
			}
		}
	})
}

func heartbeatOnce(ctx context.Context, r Registrar, reg Registration, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.Register(ctx, reg)
}
