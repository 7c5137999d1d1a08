package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// queueDSNParams puts the queue file in WAL mode so workers and request
// handlers can write concurrently.
const queueDSNParams = "?_journal=WAL&_timeout=5000&_busy_timeout=5000"

// Client runs the audit queues on their own SQLite file, separate from the
// application database.
type Client struct {
	backlite *backlite.Client
	db       *sql.DB
	logger   backlite.Logger
	workers  int

	queues  int
	started atomic.Bool
}

// NewClient opens (creating if needed) the queue database at path and
// installs the backlite schema. A nil logger logs through the standard library.
func NewClient(path string, cfg Config, logger backlite.Logger) (*Client, error) {
	if logger == nil {
		logger = printfLogger{}
	}

	db, err := openQueueDB(path, cfg.Workers)
	if err != nil {
		return nil, err
	}

	bl, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          logger,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}
	if err := bl.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	return &Client{
		backlite: bl,
		db:       db,
		logger:   logger,
		workers:  cfg.Workers,
	}, nil
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+queueDSNParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	// One connection per worker plus headroom for enqueues from handlers.
	db.SetMaxOpenConns(workers + 5)
	db.SetMaxIdleConns(workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Register adds queues. Must be called before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.backlite.Register(q)
	}
	c.queues += len(queues)
}

// Start runs the workers until ctx is cancelled or Stop is called. Calls
// after the first are ignored.
func (c *Client) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	c.logger.Info("task queue started", "workers", c.workers, "queues", c.queues)
	c.backlite.Start(ctx)
}

// Stop waits for in-flight tasks. It reports false when ctx expired first.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.started.Load() {
		return true
	}

	ok := c.backlite.Stop(ctx)
	if ok {
		c.logger.Info("task queue stopped")
	} else {
		c.logger.Error("task queue stop timed out; some tasks may be released and retried")
	}
	return ok
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.backlite.Add(tasks...)
}

type printfLogger struct{}

func (printfLogger) Info(message string, params ...any) {
	log.Printf("[TASK] %s %v", message, params)
}

func (printfLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] %s %v", message, params)
}
