package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/commuter-agent/internal/agent"
	"github.com/richxcame/commuter-agent/internal/commuter"
	"github.com/richxcame/commuter-agent/internal/maps"
	"github.com/richxcame/commuter-agent/internal/registry"
	"github.com/richxcame/commuter-agent/pkg/common"
	"github.com/richxcame/commuter-agent/pkg/config"
	"github.com/richxcame/commuter-agent/pkg/errors"
	"github.com/richxcame/commuter-agent/pkg/logger"
	"github.com/richxcame/commuter-agent/pkg/middleware"
	redisClient "github.com/richxcame/commuter-agent/pkg/redis"
	"github.com/richxcame/commuter-agent/pkg/resilience"
	"github.com/richxcame/commuter-agent/pkg/swagger"
	"github.com/richxcame/commuter-agent/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName = agent.Name
	version     = agent.Version
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	if err := logger.Init(cfg.Server.Environment, serviceName); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting commuter agent",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.Bool("live_maps", cfg.Maps.LiveMapsEnabled()),
	)

	// Initialize Sentry for error tracking
	sentryConfig := errors.DefaultSentryConfig()
	sentryConfig.ServerName = serviceName
	sentryConfig.Release = version
	if err := errors.InitSentry(sentryConfig); err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking initialized successfully")
	}

	// Initialize OpenTelemetry tracer
	tracerCfg := tracing.ConfigFromEnv(serviceName, version, cfg.Server.Environment)
	tp, err := tracing.InitTracer(tracerCfg, logger.Get())
	if err != nil {
		logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shutdown tracer", zap.Error(err))
			}
		}()
		logger.Info("OpenTelemetry tracing initialized successfully")
	}

	// Directions client: nil without an API key, every intent then answers from mock data
	var mapsBreaker *resilience.CircuitBreaker
	if cfg.Resilience.CircuitBreaker.Enabled {
		cbCfg := cfg.Resilience.CircuitBreaker.SettingsFor("google_maps")
		mapsBreaker = resilience.NewCircuitBreaker(
			resilience.BuildSettings(fmt.Sprintf("%s-directions", serviceName), cbCfg.IntervalSeconds, cbCfg.TimeoutSeconds, cbCfg.FailureThreshold, cbCfg.SuccessThreshold),
			resilience.GracefulDegradation("google_maps"),
		)
	}
	directions := maps.NewDirectionsClient(maps.ProviderConfig{
		APIKey:  cfg.Maps.APIKey,
		BaseURL: cfg.Maps.BaseURL,
		Timeout: cfg.Maps.Timeout(),
	}, mapsBreaker)
	if directions == nil {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, serving mock commuter data")
	}

	// Optional Redis registry
	var redis *redisClient.Client
	if cfg.Registry.RedisURL != "" {
		redis, err = redisClient.NewRedisClient(rootCtx, cfg.Registry.RedisURL, time.Duration(cfg.Registry.TimeoutSeconds)*time.Second)
		if err != nil {
			logger.Warn("Failed to connect to Redis, continuing without Redis registry", zap.Error(err))
			redis = nil
		} else {
			defer redis.Close()
			logger.Info("Connected to Redis")
		}
	}

	registryTimeout := time.Duration(cfg.Registry.TimeoutSeconds) * time.Second
	registration := registry.NewRegistration(cfg.Agent.ID, cfg.Agent.Name, cfg.APIURL())
	var redisRegistrar *registry.RedisRegistrar
	if cfg.Registry.Enabled && redis != nil {
		redisRegistrar = registry.NewRedisRegistrar(redis, cfg.Registry.Namespace, cfg.Registry.TTL())
	}

	commuterAgent := commuter.New(directions)
	handler := agent.NewHandler(agent.NewPipeline(commuterAgent), cfg.Agent.RequestTimeout)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithSentry()) // Custom recovery with Sentry
	router.Use(middleware.SentryMiddleware())   // Sentry integration
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(serviceName))

	if tracerCfg.Enabled {
		router.Use(middleware.TracingMiddleware(serviceName))
	}

	// Add Sentry error handler (should be near the end of middleware chain)
	router.Use(middleware.ErrorHandler())

	// Health check endpoints
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := make(map[string]func() error)
	if mapsBreaker != nil && directions != nil {
		healthChecks["google_maps"] = mapsBreaker.Check
	}
	if redis != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redis.Ping(ctx)
		}
	}
	if redisRegistrar != nil {
		healthChecks["registry"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisRegistrar.CheckListed(ctx, registration)
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/version", common.VersionInfo(serviceName, version, cfg.Server.Environment))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	swagger.RegisterRoutes(router)

	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Self-registration is best effort and never blocks startup
	if cfg.Registry.Enabled {
		var registrars []registry.Registrar
		if cfg.Registry.SupervisorURL != "" {
			registrars = append(registrars, registry.NewSupervisorRegistrar(cfg.Registry.SupervisorURL, registryTimeout))
		}
		if redisRegistrar != nil {
			registrars = append(registrars, redisRegistrar)
			registry.StartHeartbeat(rootCtx, redisRegistrar, registration, cfg.Registry.TTL()/2, registryTimeout)
		}
		logger.Info("Attempting to register agent",
			zap.String("supervisor_url", cfg.Registry.SupervisorURL),
			zap.Int("registrars", len(registrars)),
		)
		registry.NewNotifier(registryTimeout, registrars...).RegisterAsync(rootCtx, registration)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancelRoot()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if redisRegistrar != nil {
		if err := redisRegistrar.Unregister(ctx, registration); err != nil {
			logger.Warn("Failed to unregister agent", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
