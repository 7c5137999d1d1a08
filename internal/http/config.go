package http

import (
	"github.com/sirupsen/logrus"

	"github.com/Akshat120/Book-Review-API/internal/audit"
	"github.com/Akshat120/Book-Review-API/internal/auth"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core services
	AuthService AuthService
	Catalog     CatalogService
	Reviews     ReviewService

	// Authentication
	TokenIssuer auth.TokenIssuer
	Cookie      auth.CookieConfig

	// Login lockout and per-IP throttling of account routes (optional)
	LoginLimiter   *auth.LoginLimiter
	RequestLimiter *auth.RequestLimiter

	// Audit trail (optional)
	AuditService *audit.Service

	// Health checks (optional)
	Database Pinger

	// Request logging (optional; gin's default logger is used when nil)
	Logger *logrus.Logger

	// Expose /metrics and instrument requests
	MetricsEnabled bool

	// Send Strict-Transport-Security; only meaningful behind TLS
	EnableHSTS bool

	// Application info
	Version string
}
