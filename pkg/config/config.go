package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultRequestTimeout bounds the processing of one agent request.
	DefaultRequestTimeout = 5 * time.Second
	// MaxRequestTimeoutSeconds caps AGENT_REQUEST_TIMEOUT.
	MaxRequestTimeoutSeconds = 120

	DefaultMapsTimeoutSeconds     = 4
	DefaultRegistryTTLSeconds     = 300
	DefaultRegistryTimeoutSeconds = 5
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Agent      AgentConfig
	Maps       MapsConfig
	Registry   RegistryConfig
	Resilience ResilienceConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// AgentConfig describes the identity the agent advertises to the orchestrator.
type AgentConfig struct {
	Name           string
	ID             string
	Version        string
	PublicURL      string
	RequestTimeout time.Duration
}

// MapsConfig configures the Google Maps Directions client. An empty APIKey
// disables live lookups entirely.
type MapsConfig struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// RegistryConfig controls startup self-registration.
type RegistryConfig struct {
	Enabled        bool
	SupervisorURL  string
	RedisURL       string
	Namespace      string
	TTLSeconds     int
	TimeoutSeconds int
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures default and per-service breaker tuning
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
	ServiceOverrides map[string]CircuitBreakerSettings
}

// CircuitBreakerSettings overrides defaults for a specific upstream service
type CircuitBreakerSettings struct {
	FailureThreshold int `json:"failure_threshold"`
	SuccessThreshold int `json:"success_threshold"`
	TimeoutSeconds   int `json:"timeout_seconds"`
	IntervalSeconds  int `json:"interval_seconds"`
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("API_HOST", "0.0.0.0"),
			Port:         getEnv("API_PORT", getEnv("PORT", "8000")),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		},
		Agent: AgentConfig{
			Name:      serviceName,
			ID:        getEnv("AGENT_ID", "commuter_agent_01"),
			Version:   getEnv("AGENT_VERSION", "1.0.0"),
			PublicURL: getEnv("AGENT_PUBLIC_URL", ""),
		},
		Maps: MapsConfig{
			APIKey:         getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL:        getEnv("GOOGLE_MAPS_BASE_URL", ""),
			TimeoutSeconds: getEnvAsInt("MAPS_TIMEOUT_SECONDS", DefaultMapsTimeoutSeconds),
		},
		Registry: RegistryConfig{
			Enabled:        getEnvAsBool("REGISTRATION_ENABLED", true),
			SupervisorURL:  getEnv("SUPERVISOR_URL", "http://supervisor-agent/register"),
			RedisURL:       getEnv("REDIS_URL", ""),
			Namespace:      getEnv("REGISTRY_NAMESPACE", "commuter"),
			TTLSeconds:     getEnvAsInt("REGISTRY_TTL_SECONDS", DefaultRegistryTTLSeconds),
			TimeoutSeconds: getEnvAsInt("REGISTRY_TIMEOUT_SECONDS", DefaultRegistryTimeoutSeconds),
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", true),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 1),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
			},
		},
	}

	timeoutSeconds := getEnvAsInt("AGENT_REQUEST_TIMEOUT", int(DefaultRequestTimeout/time.Second))
	if timeoutSeconds > MaxRequestTimeoutSeconds {
		return nil, fmt.Errorf("AGENT_REQUEST_TIMEOUT %d exceeds maximum of %d seconds", timeoutSeconds, MaxRequestTimeoutSeconds)
	}
	if timeoutSeconds <= 0 {
		cfg.Agent.RequestTimeout = DefaultRequestTimeout
	} else {
		cfg.Agent.RequestTimeout = time.Duration(timeoutSeconds) * time.Second
	}

	if breakerOverrides := getEnv("CB_SERVICE_OVERRIDES", ""); breakerOverrides != "" {
		var serviceConfig map[string]CircuitBreakerSettings
		if err := json.Unmarshal([]byte(breakerOverrides), &serviceConfig); err != nil {
			return nil, fmt.Errorf("invalid CB_SERVICE_OVERRIDES value: %w", err)
		}
		cfg.Resilience.CircuitBreaker.ServiceOverrides = serviceConfig
	}

	if cfg.Maps.TimeoutSeconds <= 0 {
		cfg.Maps.TimeoutSeconds = DefaultMapsTimeoutSeconds
	}
	if cfg.Registry.TTLSeconds <= 0 {
		cfg.Registry.TTLSeconds = DefaultRegistryTTLSeconds
	}
	if cfg.Registry.TimeoutSeconds <= 0 {
		cfg.Registry.TimeoutSeconds = DefaultRegistryTimeoutSeconds
	}

	return cfg, nil
}

// APIURL is the address the orchestrator should use to reach the agent endpoint.
func (c *Config) APIURL() string {
	if c.Agent.PublicURL != "" {
		return c.Agent.PublicURL
	}
	return fmt.Sprintf("http://%s:%s/%s", c.Server.Host, c.Server.Port, c.Agent.Name)
}

// LiveMapsEnabled reports whether a Google Maps key was supplied.
func (c MapsConfig) LiveMapsEnabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Timeout returns the per-call timeout for the directions API.
func (c MapsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL returns the lifetime of a Redis registry record.
func (c RegistryConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// SettingsFor returns effective breaker settings for a specific upstream service name
func (c CircuitBreakerConfig) SettingsFor(service string) CircuitBreakerSettings {
	settings := CircuitBreakerSettings{
		FailureThreshold: c.FailureThreshold,
		SuccessThreshold: c.SuccessThreshold,
		TimeoutSeconds:   c.TimeoutSeconds,
		IntervalSeconds:  c.IntervalSeconds,
	}

	if override, ok := c.ServiceOverrides[service]; ok {
		if override.FailureThreshold > 0 {
			settings.FailureThreshold = override.FailureThreshold
		}
		if override.SuccessThreshold > 0 {
			settings.SuccessThreshold = override.SuccessThreshold
		}
		if override.TimeoutSeconds > 0 {
			settings.TimeoutSeconds = override.TimeoutSeconds
		}
		if override.IntervalSeconds > 0 {
			settings.IntervalSeconds = override.IntervalSeconds
		}
	}

	if settings.SuccessThreshold <= 0 {
		settings.SuccessThreshold = 1
	}
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.TimeoutSeconds <= 0 {
		settings.TimeoutSeconds = 30
	}
	if settings.IntervalSeconds <= 0 {
		settings.IntervalSeconds = 60
	}

	return settings
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
