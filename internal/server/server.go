// Package server is the back-office gateway. It owns the cookie session,
// guards the private screens and serves their data as JSON.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/wheelx-dev/wheelx/internal/api"
	"github.com/wheelx-dev/wheelx/internal/config"
)

// Server represents the HTTP server
type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     zerolog.Logger
	registry   *prometheus.Registry
	metrics    *Metrics
	apiMetrics *api.Metrics
	httpClient *http.Client
	mailer     Mailer
	version    string
}

// Option configures a Server.
type Option func(*Server)

// WithMailer replaces the SMTP mailer used for partner inquiries.
func WithMailer(m Mailer) Option {
	return func(s *Server) {
		s.mailer = m
	}
}

// WithHTTPClient sets the client used for upstream API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Server) {
		s.httpClient = hc
	}
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string, opts ...Option) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		config:     cfg,
		logger:     zlog,
		registry:   reg,
		metrics:    NewMetrics(reg),
		apiMetrics: api.NewMetrics(reg),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		mailer:     NewSMTPMailer(cfg.SMTP),
		version:    version,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRouter()
	return s
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(metricsMiddleware(s.metrics))

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.HTTP.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		Registry: s.registry,
	})))
	s.router.POST("/api/contact-partner", s.contactPartner)

	// Everything else lives under a locale
	s.router.NoRoute(s.localeRedirect)
	loc := s.router.Group("/:locale", s.requireLocale())
	{
		loc.POST("/auth/login", s.login)
		loc.POST("/auth/logout", s.logout)

		private := loc.Group("/private", s.privateGuard())
		private.GET("/country", s.setCountry)

		data := private.Group("/api")
		{
			data.GET("/me", s.read(currentUser))
			data.GET("/stats", s.read(dashboardStats))
			data.GET("/active-rides", s.read(activeRides))
			data.GET("/countries", s.read(countries))
			data.GET("/countries/config", s.read(countryConfigs))

			data.GET("/users", s.read(listOf((*api.Client).Users)))
			data.GET("/rides", s.read(listOf((*api.Client).Rides)))
			data.GET("/garages", s.read(listOf((*api.Client).Garages)))
			data.GET("/groups", s.read(listOf((*api.Client).Groups)))
			data.GET("/posts", s.read(listOf((*api.Client).Posts)))
			data.GET("/events", s.read(listOf((*api.Client).Events)))
			data.GET("/routes", s.read(listOf((*api.Client).Routes)))
			data.GET("/reports", s.read(listOf((*api.Client).Reports)))
			data.GET("/insurance-requests", s.read(insuranceRequests))

			data.PATCH("/users/:id/ban", s.mutate(byID((*api.Client).BanUser)))
			data.PATCH("/users/:id/unban", s.mutate(byID((*api.Client).UnbanUser)))

			data.POST("/garages", s.mutate(createGarage))
			data.POST("/garages/:id", s.mutate(updateGarage))
			data.POST("/garages/:id/delete", s.mutate(byID((*api.Client).DeleteGarage)))

			data.DELETE("/posts/:id", s.mutate(byID((*api.Client).DeletePost)))
			data.DELETE("/events/:id", s.mutate(byID((*api.Client).DeleteEvent)))
			data.DELETE("/routes/:id", s.mutate(byID((*api.Client).DeleteRoute)))

			data.POST("/active-rides/:id/stop", s.mutate(byID((*api.Client).StopActiveRide)))

			data.PATCH("/insurance-requests/:id/process", s.mutate(byID((*api.Client).MarkInsuranceProcessing)))
			data.PATCH("/insurance-requests/:id/approve", s.mutate(approveInsurance))
			data.PATCH("/insurance-requests/:id/reject", s.mutate(rejectInsurance))
			data.PATCH("/insurance-requests/:id/activate", s.mutate(byID((*api.Client).ActivateInsurance)))

			data.PATCH("/countries/:code/features", s.mutate(updateCountryFeatures))
			data.POST("/notifications/broadcast", s.mutate(broadcast))
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "wheelx-gateway",
		"version":   s.version,
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	port := ":" + s.config.HTTP.Port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              port,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("port", port).Str("api_url", s.config.API.URL).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error().Err(err).Msg("HTTP server error")
			return err
		}
		return nil
	case <-ctx.Done():
	}
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
