package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"admissions/internal/account"
	"admissions/internal/auth"
	"admissions/internal/config"
	"admissions/internal/httpmiddleware"
	"admissions/internal/metrics"
	"admissions/internal/queue"
	"admissions/internal/session"
	"admissions/internal/store"
	"admissions/internal/validate"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("warning: db not reachable: %v", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "admissions:notifications")
	}

	repo := account.NewRepository(db.Client)
	svc := account.NewService(repo, cfg.BcryptCost)
	sessions := session.New(redisClient.Client, cfg.SessionTTL)
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	guard := &auth.Guard{
		SigningKey: cfg.JWTSigningKey,
		Issuer:     cfg.JWTIssuer,
		Summaries:  session.NewResolver(sessions, repo),
		OnDeny: func(reason auth.Reason) {
			collector.RecordGuardDenial(string(reason))
		},
	}

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS middleware
	r.Use(corsMiddleware())

	// Security headers
	r.Use(securityHeaders())

	// Rate limiting
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/auth/register", func(c *gin.Context) {
		var reg account.Registration
		if err := c.ShouldBindJSON(&reg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
			return
		}
		reg.Normalize()

		if report := validate.CheckRegistration(&reg); !report.Passed() {
			collector.RecordRegistration("invalid")
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": report.Errors})
			return
		}

		acct, err := svc.Register(c.Request.Context(), reg)
		if err != nil {
			if errors.Is(err, account.ErrDuplicateEmail) {
				collector.RecordRegistration("duplicate")
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
				return
			}
			collector.RecordRegistration("error")
			log.Printf("register failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "registration failed"})
			return
		}

		if err := q.Publish(c.Request.Context(), queue.Message{Type: queue.TypeRegistered, Body: []byte(acct.ID)}); err != nil {
			log.Printf("queue publish failed: %v", err)
		}

		collector.RecordRegistration("created")
		c.JSON(http.StatusCreated, gin.H{"success": true, "user": acct.Summary()})
	})

	r.POST("/v1/auth/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
			return
		}

		if report := validate.CheckLogin(req.Email, req.Password); !report.Passed() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": report.Errors})
			return
		}

		acct, err := svc.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, account.ErrInvalidCredentials) {
				collector.RecordLogin("invalid")
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
				return
			}
			collector.RecordLogin("error")
			log.Printf("login failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "login failed"})
			return
		}

		token, err := auth.Issue(acct.ID, string(acct.Role), cfg.JWTIssuer, cfg.JWTSigningKey, cfg.TokenTTL)
		if err != nil {
			collector.RecordLogin("error")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "token issue failed"})
			return
		}

		summary := acct.Summary()
		if err := sessions.Store(c.Request.Context(), summary); err != nil {
			log.Printf("session store failed: %v", err)
		}

		collector.RecordLogin("success")
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"token":      token.Value,
			"expires_at": token.ExpiresAt.Unix(),
			"user":       summary,
		})
	})

	// Any authenticated caller may reload its own identity summary; clients
	// use this to rebuild local state instead of trusting a stale cache.
	r.GET("/v1/me", guard.Require(auth.Requirement{}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "user": auth.Identity(c)})
	})

	// Approved students only.
	r.GET("/v1/student/dashboard",
		guard.Require(auth.Requirement{Role: account.RoleStudent, RequireApproval: true}),
		func(c *gin.Context) {
			summary := auth.Identity(c)
			c.JSON(http.StatusOK, gin.H{"success": true, "user": summary, "message": "welcome, " + summary.FullName})
		})

	admin := r.Group("/v1/admin", guard.Require(auth.Requirement{Role: account.RoleAdmin}))

	admin.GET("/accounts", func(c *gin.Context) {
		var status account.Status
		if v := c.Query("status"); v != "" {
			parsed, err := account.ParseStatus(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unknown status filter"})
				return
			}
			status = parsed
		}
		limit, offset := 50, 0
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}
		if v := c.Query("offset"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				offset = parsed
			}
		}
		accounts, err := svc.List(c.Request.Context(), status, limit, offset)
		if err != nil {
			log.Printf("list accounts failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "listing failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "accounts": accounts})
	})

	admin.PUT("/accounts/:id/status", func(c *gin.Context) {
		id := c.Param("id")
		var body struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
			return
		}

		if report := validate.CheckStatusUpdate(body.Status); !report.Passed() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": report.Errors})
			return
		}

		acct, err := svc.SetStatus(c.Request.Context(), id, account.Status(body.Status))
		if err != nil {
			switch {
			case errors.Is(err, account.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "account not found"})
			case errors.Is(err, account.ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "status can only move from pending to approved or rejected on student accounts"})
			default:
				log.Printf("status update failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "status update failed"})
			}
			return
		}

		// The cached summary now carries a stale status; drop it so the next
		// guard check sees the review outcome.
		if err := sessions.Invalidate(c.Request.Context(), id); err != nil {
			log.Printf("session invalidate failed: %v", err)
		}
		if err := q.Publish(c.Request.Context(), queue.Message{Type: queue.TypeStatusChanged, Body: []byte(id)}); err != nil {
			log.Printf("queue publish failed: %v", err)
		}

		collector.RecordTransition(string(acct.Status))
		c.JSON(http.StatusOK, gin.H{"success": true, "user": acct.Summary()})
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
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

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
