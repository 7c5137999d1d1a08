package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Akshat120/Book-Review-API/internal/audit"
	"github.com/Akshat120/Book-Review-API/internal/config"
	"github.com/Akshat120/Book-Review-API/internal/database"
	auditdb "github.com/Akshat120/Book-Review-API/internal/database/audit"
)

// AuditCleanupCommand runs one audit retention pass against the configured
// database and exits.
type AuditCleanupCommand struct {
	RetentionDays int
	DryRun        bool

	cfg *config.Config
}

func NewAuditCleanupCommand(cfg *config.Config) *AuditCleanupCommand {
	return &AuditCleanupCommand{cfg: cfg}
}

func (cmd *AuditCleanupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("audit-cleanup", flag.ContinueOnError)

	fs.IntVar(&cmd.RetentionDays, "days", cmd.cfg.Audit.RetentionDays, "Delete audit events older than this many days")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Count matching events without deleting them")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s audit-cleanup [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Remove audit events past the retention period.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s audit-cleanup\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s audit-cleanup -days 7 -dry-run\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.RetentionDays < 1 {
		return fmt.Errorf("days must be at least 1, got %d", cmd.RetentionDays)
	}

	return nil
}

func (cmd *AuditCleanupCommand) Run() error {
	db, err := database.NewDatabase(cmd.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	retention := time.Duration(cmd.RetentionDays) * 24 * time.Hour
	repo := auditdb.NewRepository(db.DB)

	if cmd.DryRun {
		count, err := repo.CountOldEvents(ctx, time.Now().Add(-retention))
		if err != nil {
			return fmt.Errorf("failed to count audit events: %w", err)
		}
		fmt.Printf("%d audit events older than %d days would be removed\n", count, cmd.RetentionDays)
		return nil
	}

	deleted, err := audit.NewService(repo).DeleteOldEvents(ctx, retention)
	if err != nil {
		return fmt.Errorf("failed to delete audit events: %w", err)
	}
	fmt.Printf("Removed %d audit events older than %d days\n", deleted, cmd.RetentionDays)
	return nil
}
