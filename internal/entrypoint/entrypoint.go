package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Akshat120/Book-Review-API/internal/audit"
	"github.com/Akshat120/Book-Review-API/internal/auth"
	"github.com/Akshat120/Book-Review-API/internal/catalog"
	"github.com/Akshat120/Book-Review-API/internal/config"
	"github.com/Akshat120/Book-Review-API/internal/database"
	auditdb "github.com/Akshat120/Book-Review-API/internal/database/audit"
	booksdb "github.com/Akshat120/Book-Review-API/internal/database/books"
	reviewsdb "github.com/Akshat120/Book-Review-API/internal/database/reviews"
	usersdb "github.com/Akshat120/Book-Review-API/internal/database/users"
	http_controllers "github.com/Akshat120/Book-Review-API/internal/http"
	"github.com/Akshat120/Book-Review-API/internal/logging"
	"github.com/Akshat120/Book-Review-API/internal/reviews"
	"github.com/Akshat120/Book-Review-API/internal/scheduler"
	"github.com/Akshat120/Book-Review-API/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests first so no new audit events are produced
	// while the queue drains.
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logger := logging.NewLogger(cfg.Logging)
	logging.RedirectStdLog(logger)

	if cfg.Global.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Printf("Starting Book Review API v%s (environment=%s)", version, cfg.Global.Environment)

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	issuer, closeIssuer, err := newTokenIssuer(cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize session tokens: %v", err)
	}
	defer closeIssuer()

	bookRepo := booksdb.NewRepository(db.DB)
	reviewRepo := reviewsdb.NewRepository(db.DB)

	authService := auth.NewService(usersdb.NewRepository(db.DB), issuer, cfg.Auth)
	catalogService := catalog.NewService(bookRepo, reviewRepo, cfg.Pagination.PageSize)
	reviewService := reviews.NewService(reviewRepo)

	var auditService *audit.Service
	if cfg.Audit.Enabled {
		auditService = audit.NewService(auditdb.NewRepository(db.DB))
	} else {
		log.Printf("Audit trail disabled")
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled && auditService != nil {
		tasksPath := tasks.DatabasePath(cfg.Tasks, cfg.Database)
		taskClient, err = tasks.NewClient(tasksPath, tasks.FromConfig(cfg.Tasks), logging.NewTaskLogger(logger))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRecordAuditEventQueue(auditService),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		auditService.SetEnqueuer(taskClient)
		log.Printf("Task queue started (%d workers, database=%s)", cfg.Tasks.Workers, tasksPath)
	}

	// Schedule audit retention
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if auditService != nil {
		var runner scheduler.CleanupRunner = scheduler.InlineCleanup{Cleaner: auditService}
		if taskClient != nil {
			runner = taskClient
		}
		cleanupScheduler = scheduler.NewAuditCleanupScheduler(runner, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := cleanupScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: audit cleanup not scheduled: %v", err)
		}
	}

	// Login lockout and account route throttling
	var loginLimiter *auth.LoginLimiter
	var requestLimiter *auth.RequestLimiter
	var cleaners []auth.Cleaner
	if cfg.Auth.LoginMaxAttempts > 0 {
		loginLimiter = auth.NewLoginLimiter(auth.LoginLimitConfig{
			MaxAttempts:     cfg.Auth.LoginMaxAttempts,
			WindowDuration:  cfg.Auth.LoginLockout,
			LockoutDuration: cfg.Auth.LoginLockout,
		})
		cleaners = append(cleaners, loginLimiter)
	}
	if cfg.Auth.RateLimitRPS > 0 {
		requestLimiter = auth.NewRequestLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst)
		cleaners = append(cleaners, requestLimiter)
	}
	limiterCtx, limiterCancel := context.WithCancel(context.Background())
	defer limiterCancel()
	if len(cleaners) > 0 {
		go auth.RunCleanup(limiterCtx, 5*time.Minute, cleaners...)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		AuthService: authService,
		Catalog:     catalogService,
		Reviews:     reviewService,
		TokenIssuer: issuer,
		Cookie: auth.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.SecureCookies,
		},
		LoginLimiter:   loginLimiter,
		RequestLimiter: requestLimiter,
		AuditService:   auditService,
		Database:       db,
		Logger:         logger,
		MetricsEnabled: cfg.Metrics.Enabled,
		EnableHSTS:     cfg.Auth.SecureCookies,
		Version:        version,
	})

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		limiterCancel()
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if auditService != nil {
			auditService.Wait()
		}
	}

	Serve(router, cfg, onShutdown)
}

// newTokenIssuer builds the session token backend selected by
// AUTH_SESSION_BACKEND. The returned func releases its resources.
func newTokenIssuer(cfg *config.Config, db *database.Database) (auth.TokenIssuer, func(), error) {
	switch cfg.Auth.SessionBackend {
	case config.SessionBackendStore:
		if db.Driver != database.DriverSQLite {
			return nil, nil, fmt.Errorf("session backend %q requires the sqlite driver", cfg.Auth.SessionBackend)
		}
		sqlDB, err := db.SQLDB()
		if err != nil {
			return nil, nil, err
		}
		issuer, err := auth.NewStoreIssuer(sqlDB, cfg.Auth.TokenTTL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Session backend: store")
		return issuer, issuer.Close, nil

	case config.SessionBackendJWT, "":
		secret := cfg.Auth.JWTSecret
		if secret == "" {
			generated, err := auth.GenerateSecret()
			if err != nil {
				return nil, nil, fmt.Errorf("generate jwt secret: %w", err)
			}
			secret = generated
			log.Printf("WARNING: JWT_SECRET is not set; generated a random secret. Sessions will not survive a restart.")
		}
		issuer, err := auth.NewJWTIssuer(secret, cfg.Auth.TokenTTL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Session backend: jwt")
		return issuer, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Auth.SessionBackend)
	}
}
