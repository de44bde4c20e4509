package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	redisclient "github.com/richxcame/commuter-agent/pkg/redis"
	"github.com/richxcame/commuter-agent/pkg/tracing"
)

// RedisRegistrar stores the registration under {namespace}:agents:{id} with a
// TTL and indexes it in {namespace}:capabilities:{capability} sets.
type RedisRegistrar struct {
	client    redisclient.ClientInterface
	namespace string
	ttl       time.Duration
}

// NewRedisRegistrar creates a Redis-backed registrar.
func NewRedisRegistrar(client redisclient.ClientInterface, namespace string, ttl time.Duration) *RedisRegistrar {
	return &RedisRegistrar{client: client, namespace: namespace, ttl: ttl}
}

func (r *RedisRegistrar) Name() string { return "redis" }

func (r *RedisRegistrar) agentKey(agentID string) string {
	return fmt.Sprintf("%s:agents:%s", r.namespace, agentID)
}

func (r *RedisRegistrar) capabilityKey(capability string) string {
	return fmt.Sprintf("%s:capabilities:%s", r.namespace, capability)
}

// Register writes the record and its indexes in one transaction. Index sets
// expire at twice the record TTL.
func (r *RedisRegistrar) Register(ctx context.Context, reg Registration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal registration for %s: %w", reg.AgentID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.agentKey(reg.AgentID), string(data), r.ttl)
	for _, capability := range reg.Capabilities {
		key := r.capabilityKey(capability)
		pipe.SAdd(ctx, key, reg.AgentID)
		pipe.Expire(ctx, key, r.ttl*2)
	}

	err = tracing.TraceRedisCommand(ctx, tracerName, "MULTI", r.agentKey(reg.AgentID), func(ctx context.Context) error {
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to register agent atomically: %w", err)
	}
	return nil
}

// Unregister removes the record and its index memberships.
func (r *RedisRegistrar) Unregister(ctx context.Context, reg Registration) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.agentKey(reg.AgentID))
	for _, capability := range reg.Capabilities {
		pipe.SRem(ctx, r.capabilityKey(capability), reg.AgentID)
	}

	err := tracing.TraceRedisCommand(ctx, tracerName, "MULTI", r.agentKey(reg.AgentID), func(ctx context.Context) error {
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to unregister agent: %w", err)
	}
	return nil
}

// CheckListed reports an error unless reg is indexed under every capability it
// advertises. Readiness uses it to notice an expired registration.
func (r *RedisRegistrar) CheckListed(ctx context.Context, reg Registration) error {
	for _, capability := range reg.Capabilities {
		ids, err := r.AgentsWithCapability(ctx, capability)
		if err != nil {
			return fmt.Errorf("failed to list agents for %s: %w", capability, err)
		}
		if !slices.Contains(ids, reg.AgentID) {
			return fmt.Errorf("agent %s not listed under %s", reg.AgentID, capability)
		}
	}
	return nil
}

// AgentsWithCapability lists agent IDs indexed under capability.
func (r *RedisRegistrar) AgentsWithCapability(ctx context.Context, capability string) ([]string, error) {
	return r.client.Members(ctx, r.capabilityKey(capability))
}
