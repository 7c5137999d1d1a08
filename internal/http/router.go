package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Akshat120/Book-Review-API/internal/auth"
	"github.com/Akshat120/Book-Review-API/internal/logging"
	"github.com/Akshat120/Book-Review-API/internal/metrics"
)

const hstsMaxAge = 365 * 24 * 60 * 60

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(logging.RequestIDMiddleware())
	if cfg.Logger != nil {
		router.Use(logging.RequestLogger(cfg.Logger))
	} else {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())

	if cfg.MetricsEnabled {
		router.Use(metrics.Middleware())
	}

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.EnableHSTS {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	authMiddleware := auth.NewMiddleware(cfg.TokenIssuer, cfg.Cookie.Name)
	requireAuth := authMiddleware.RequireAuth()

	health := NewHealthController(cfg.Database, cfg.Version)
	users := NewUsersController(cfg.AuthService, cfg.TokenIssuer, cfg.Cookie, cfg.AuditService)
	if cfg.LoginLimiter != nil {
		users.SetLoginLimiter(cfg.LoginLimiter)
	}
	books := NewBooksController(cfg.Catalog, cfg.AuditService)
	reviews := NewReviewsController(cfg.Reviews, cfg.AuditService)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Account endpoints
	router.GET("/", Welcome)
	account := router.Group("/")
	if cfg.RequestLimiter != nil {
		account.Use(cfg.RequestLimiter.Middleware())
	}
	account.POST("/signup", users.Signup)
	account.POST("/login", users.Login)
	router.POST("/logout", users.Logout)

	api := router.Group("/api")

	// Books API endpoints
	api.GET("/books", books.ListBooks)
	api.GET("/books/:bookId", books.GetBook)
	api.POST("/books", requireAuth, books.CreateBook)

	// Review endpoints
	api.POST("/books/:bookId/reviews", requireAuth, reviews.CreateReview)
	api.PUT("/reviews/:reviewId", requireAuth, reviews.UpdateReview)
	api.DELETE("/reviews/:reviewId", requireAuth, reviews.DeleteReview)

	// Audit trail endpoints
	if cfg.AuditService != nil {
		auditController := NewAuditController(cfg.AuditService)
		api.GET("/audit", requireAuth, auditController.GetAuditEvents)
	}

	return router
}
