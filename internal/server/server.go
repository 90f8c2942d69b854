package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"admission-gateway/internal/admission"
	"admission-gateway/internal/config"
	"admission-gateway/internal/handler"
	"admission-gateway/internal/middleware"
	"admission-gateway/internal/models"
	"admission-gateway/internal/override"
	"admission-gateway/internal/repository"
	"admission-gateway/internal/service"
	"admission-gateway/internal/storage"
	"github.com/gin-gonic/gin"
)

// pinger is satisfied by store backends that can report liveness. The
// in-memory store has nothing to ping.
type pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	router          *gin.Engine
	config          *config.Config
	store           storage.Store
	postgres        *storage.Postgres
	dispatcher      *admission.Dispatcher
	overrideService *service.OverrideService
	logWriter       *middleware.RequestLogWriter
	httpServer      *http.Server
}

func New(cfg *config.Config, store storage.Store, postgres *storage.Postgres) (*Server, error) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	s := &Server{
		router:   router,
		config:   cfg,
		store:    store,
		postgres: postgres,
	}

	overrides := s.buildOverrideStore()

	tiers, err := s.loadTiers()
	if err != nil {
		return nil, err
	}

	tierSet, err := admission.NewTierSet(store, cfg.Limiter.Strategy, cfg.Limiter.KeyPrefix, tiers)
	if err != nil {
		return nil, err
	}
	s.dispatcher = admission.NewDispatcher(tierSet, overrides)

	var auditRepo *repository.OverrideAuditRepository
	if postgres != nil {
		auditRepo = repository.NewOverrideAuditRepository(postgres)
	}
	s.overrideService = service.NewOverrideService(overrides, auditRepo)

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// buildOverrideStore picks the override backend. The Redis backend needs the
// Redis store client; any other store backend drops to process-local flags.
func (s *Server) buildOverrideStore() override.Store {
	if s.config.Override.Backend == "redis" {
		if rc, ok := s.store.(*storage.RedisClient); ok {
			return override.NewRedisStore(rc)
		}
		log.Printf("Override backend %q needs the redis store, using process-local flags", s.config.Override.Backend)
	}
	return override.NewMemoryStore()
}

// loadTiers returns the tier table in match order. With Postgres the config
// tiers seed the table once and the database is authoritative afterwards, so
// operators can retune limits without shipping a new config file.
func (s *Server) loadTiers() ([]admission.Tier, error) {
	fromConfig := make([]admission.Tier, 0, len(s.config.Tiers))
	for _, tier := range s.config.Tiers {
		fromConfig = append(fromConfig, admission.Tier{
			Name:        tier.Name,
			Prefix:      tier.Prefix,
			Window:      time.Duration(tier.WindowMS) * time.Millisecond,
			MaxRequests: tier.MaxRequests,
		})
	}

	if s.postgres == nil {
		return fromConfig, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tierRepo := repository.NewTierRepository(s.postgres)

	seed := make([]models.RateLimitTier, 0, len(s.config.Tiers))
	for i, tier := range s.config.Tiers {
		seed = append(seed, models.RateLimitTier{
			Name:        tier.Name,
			Prefix:      tier.Prefix,
			WindowMS:    tier.WindowMS,
			MaxRequests: tier.MaxRequests,
			Position:    i,
		})
	}
	if err := tierRepo.SeedIfEmpty(ctx, seed); err != nil {
		return nil, err
	}

	rows, err := tierRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	tiers := make([]admission.Tier, 0, len(rows))
	for _, row := range rows {
		tiers = append(tiers, admission.Tier{
			Name:        row.Name,
			Prefix:      row.Prefix,
			Window:      time.Duration(row.WindowMS) * time.Millisecond,
			MaxRequests: row.MaxRequests,
		})
	}
	return tiers, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS(s.config.CORS.AllowOrigin))

	if s.postgres != nil {
		logRepo := repository.NewRequestLogRepository(s.postgres)
		s.logWriter = middleware.NewRequestLogWriter(logRepo, s.config.Postgres.LogBufferSize)
		s.router.Use(middleware.RequestLogger(s.logWriter))
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.StaticFile("/demo", "./web/index.html")

	overrideHandler := handler.NewOverrideHandler(s.overrideService)
	statusHandler := handler.NewStatusHandler(s.dispatcher, s.overrideService, s.config.Limiter.Strategy)

	admin := s.router.Group("/admin")
	admin.Use(middleware.AdminRateGuard(s.config.Admin.GuardRPS, s.config.Admin.GuardBurst))

	// The admin surface runs open unless a JWT secret is configured, in
	// which case everything but login requires a valid token.
	if s.config.Admin.JWTSecret != "" && s.postgres != nil {
		authService := service.NewAuthService(
			repository.NewUserRepository(s.postgres),
			s.config.Admin.JWTSecret,
			s.config.Admin.TokenExpiryHours,
		)
		admin.POST("/login", handler.NewAuthHandler(authService).Login)
		admin.Use(middleware.RequireAuth(authService))
	} else if s.config.Admin.JWTSecret != "" {
		log.Println("ADMIN_JWT_SECRET set but Postgres is disabled; admin surface runs without auth")
	}

	admin.POST("/override-rate-limit", overrideHandler.Set)
	admin.GET("/overrides", overrideHandler.List)
	admin.GET("/status", statusHandler.Status)

	if s.postgres != nil {
		analyticsHandler := handler.NewAnalyticsHandler(service.NewAnalyticsService(
			s.postgres,
			repository.NewRequestLogRepository(s.postgres),
		))
		admin.GET("/overrides/audit", overrideHandler.Audit)
		admin.GET("/analytics", analyticsHandler.GetSummary)
		admin.GET("/analytics/timeseries", analyticsHandler.GetTimeSeries)
		admin.GET("/logs", analyticsHandler.GetLogs)
	}

	// Everything unregistered is rate limited.
	admissionHandler := handler.NewAdmissionHandler(s.dispatcher)
	s.router.NoRoute(admissionHandler.Handle)
}

func (s *Server) healthCheck(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if p, ok := s.store.(pinger); ok {
		storeHealthy := true
		if err := p.Ping(c.Request.Context()); err != nil {
			storeHealthy = false
			healthy = false
			log.Printf("Store health check failed: %v", err)
		}
		checks["store"] = storeHealthy
	}

	if s.postgres != nil {
		dbHealthy := true
		if err := s.postgres.Ping(c.Request.Context()); err != nil {
			dbHealthy = false
			healthy = false
			log.Printf("Database health check failed: %v", err)
		}
		checks["database"] = dbHealthy
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "admission-gateway",
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	log.Printf("Starting admission gateway on %s", addr)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// Flush only after the listener stops feeding the writer.
	if s.logWriter != nil {
		s.logWriter.Stop()
	}

	return err
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
