package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hvlabs/docproc/internal/api/http"
	"github.com/hvlabs/docproc/internal/api/middleware"
	"github.com/hvlabs/docproc/internal/config"
	"github.com/hvlabs/docproc/internal/document"
	"github.com/hvlabs/docproc/internal/function"
	"github.com/hvlabs/docproc/internal/logging"
	"github.com/hvlabs/docproc/internal/monitoring"
	"github.com/hvlabs/docproc/internal/telemetry"
)

// closeTimeout bounds graceful shutdown, including the final trace flush.
const closeTimeout = 15 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	harness    *function.Harness
	telemetry  *telemetry.Context
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	restoreLog func()
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Initialize logger
	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	logCfg.Level = cfg.Logging.Level
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Initializing document processing service",
		zap.String("port", cfg.Server.Port),
		zap.String("service", cfg.Telemetry.ServiceName),
		zap.String("environment", cfg.Telemetry.Environment),
	)

	// Detect the runtime identity once per container and bind it, with the
	// service name, to every record this process emits
	rc := telemetry.DetectRuntime(cfg.Telemetry.Environment, cfg.Telemetry.Version)
	logger = logger.WithService(cfg.Telemetry.ServiceName).WithRuntime(rc)
	restoreLog := logging.InstallGlobals(logger)
	logger.Info("Runtime detected",
		zap.Bool("is_remote", rc.IsRemote),
		zap.String("region", rc.Region),
		zap.String("boot_id", rc.BootID),
	)

	// Initialize metrics (needed by other components)
	metrics := monitoring.NewMetrics()
	logger.Info("Performance monitoring initialized")

	// Initialize distributed tracing
	tctx, err := telemetry.New(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Telemetry.Environment,
		Version:     cfg.Telemetry.Version,
		Exporter:    cfg.Telemetry.Exporter,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRate:  cfg.Telemetry.SampleRate,
		Tags:        cfg.Telemetry.Tags,
	}, rc, logger, telemetry.WithGlobal())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	logger.Info("Distributed tracing initialized",
		zap.String("exporter", cfg.Telemetry.Exporter),
		zap.Float64("sample_rate", cfg.Telemetry.SampleRate),
	)

	// Build the document processor and run its init hook
	processor := document.New(tctx, logger, document.WithMetrics(metrics))
	harness := function.New(processor, tctx, metrics, logger)
	if err := harness.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start function: %w", err)
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := http.NewHandlers(harness, tctx, metrics, logger)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Document processing, with admission control on the work route only
	router.POST("/process", middleware.MaxInFlight(cfg.Function.MaxConcurrent), handlers.Process)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:     router,
		harness:    harness,
		telemetry:  tctx,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
		restoreLog: restoreLog,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	// Stop the function: finish hook, then final trace flush and
	// tracer teardown
	err := s.harness.Stop(ctx)
	if err != nil {
		s.logger.Error("Failed to stop function cleanly", zap.Error(err))
	} else {
		s.logger.Info("Function stopped")
	}

	// Restore global loggers and sync before exit
	s.restoreLog()
	s.logger.Sync()

	if err != nil {
		return fmt.Errorf("failed to stop function: %w", err)
	}
	return nil
}
