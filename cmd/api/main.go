package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campuslens/internal/auth"
	"campuslens/internal/config"
	"campuslens/internal/handler"
	"campuslens/internal/httpmiddleware"
	"campuslens/internal/portal"
	"campuslens/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	broker := portal.New(cfg.PortalBaseURL, cfg.PortalTimeout, cfg.PortalRetries)
	h := handler.New(broker)

	// Rate limiting backend. Redis is the multi-instance option; memory is
	// fine for a single box.
	var limiter httpmiddleware.Limiter
	var redisClient *store.Redis
	if cfg.RateLimitBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		limiter = httpmiddleware.NewRedisFixedWindow(redisClient.Client, cfg.RateLimitPerMin)
		log.Println("rate limiting backed by redis:", cfg.RedisAddr)
	} else {
		limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.RateLimit(limiter))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var healthExtra func(c *gin.Context) (string, bool)
	if redisClient != nil {
		healthExtra = func(c *gin.Context) (string, bool) {
			return "redis", redisClient.Healthy(c.Request.Context())
		}
	}
	r.GET("/healthz", h.Healthz(healthExtra))

	v1 := r.Group("/v1")
	if cfg.ServiceAuthKey != "" {
		v1.Use(auth.ServiceAuth(cfg.ServiceAuthKey, cfg.ServiceAuthIssuer))
		log.Println("service auth enabled")
	}

	v1.POST("/attendance/summary", h.Summary)
	v1.POST("/attendance/daywise", h.Daywise)
	v1.POST("/attendance/schedule", h.Schedule)
	v1.POST("/attendance/timetable", h.Timetable)
	v1.POST("/attendance/timeline", h.Timeline)
	v1.POST("/attendance/projection", h.Projection)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (portal %s)", cfg.HTTPPort, cfg.PortalBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
