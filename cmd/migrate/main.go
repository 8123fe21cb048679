// ABOUTME: Migration utility for moving a crew book between store backends.
// ABOUTME: Copies every contact from SQLite to Badger or back, with dry-run and backup.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mycrew/mycrew/config"
	"github.com/mycrew/mycrew/logger"
	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/store"
)

func main() {
	from := flag.String("from", config.BackendSQLite, "Source backend: sqlite or badger")
	to := flag.String("to", config.BackendBadger, "Target backend: sqlite or badger")
	dbPath := flag.String("db", "", "SQLite database path (default: from config)")
	kvDir := flag.String("kv", "", "Badger directory (default: from config)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Back up the SQLite file before writing to it")
	flag.Parse()

	flush, err := logger.Install("info", "console", "mycrew-migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	cfg, err := config.Load("")
	if err != nil {
		zap.L().Fatal("failed to load config", zap.Error(err))
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *kvDir != "" {
		cfg.KVDir = *kvDir
	}

	if err := migrate(context.Background(), cfg, *from, *to, *dryRun, *backup); err != nil {
		zap.L().Fatal("migration failed", zap.Error(err))
	}
	zap.L().Info("migration completed successfully")
}

func migrate(ctx context.Context, cfg *config.Config, from, to string, dryRun, createBackup bool) error {
	if from == to {
		return fmt.Errorf("source and target are both %s", from)
	}

	if createBackup && !dryRun && to == config.BackendSQLite {
		if err := backupFile(cfg.DBPath); err != nil {
			return err
		}
	}

	src, err := openBackend(cfg, from)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	contacts, err := src.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read contacts: %w", err)
	}
	zap.L().Info("source loaded", zap.String("backend", from), zap.Int("contacts", len(contacts)))

	if dryRun {
		for i := range contacts {
			zap.L().Info("would copy", zap.String("id", contacts[i].ID), zap.String("name", contacts[i].FullName()))
		}
		return nil
	}

	dst, err := openBackend(cfg, to)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	copied, skipped, err := copyContacts(ctx, dst, contacts)
	zap.L().Info("contacts copied", zap.Int("copied", copied), zap.Int("skipped", skipped))
	return err
}

// copyContacts writes contacts to dst keeping their ids. Contacts whose id
// already exists in dst are skipped, so a migration can be re-run.
func copyContacts(ctx context.Context, dst store.Store, contacts []models.Contact) (copied, skipped int, err error) {
	for i := range contacts {
		c := contacts[i]
		if _, err := dst.Get(ctx, c.ID); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, models.ErrContactNotFound) {
			return copied, skipped, fmt.Errorf("failed to check %s: %w", c.ID, err)
		}

		if _, err := dst.Create(ctx, &c); err != nil {
			return copied, skipped, fmt.Errorf("failed to copy %s: %w", c.ID, err)
		}
		copied++
	}
	return copied, skipped, nil
}

func openBackend(cfg *config.Config, backend string) (store.Store, error) {
	c := *cfg
	c.Backend = backend
	return store.Open(&c)
}

func backupFile(path string) error {
	input, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, input, 0644); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	zap.L().Info("backup created", zap.String("path", backupPath))
	return nil
}
