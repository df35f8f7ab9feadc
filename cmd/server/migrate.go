package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Disha/internal/api"
	"github.com/soaringjerry/Disha/internal/config"
	dbstore "github.com/soaringjerry/Disha/internal/db"
	"github.com/soaringjerry/Disha/internal/platform/logger"
)

// MigrateIfNeeded imports the JSON snapshot into a new SQLite database. It
// does nothing when the database file already exists or there is no
// snapshot. It returns the number of sessions imported.
func MigrateIfNeeded(ctx context.Context, snapshotPath, sqlitePath, migrationsDir, driver string, log *logger.Logger) (int, error) {
	if sqlitePath == "" {
		return 0, errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return 0, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("check sqlite file: %w", err)
	}
	if snapshotPath == "" {
		return 0, nil
	}
	snap, err := api.ReadSnapshot(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("load snapshot: %w", err)
	}

	log.Info("first run, importing snapshot into sqlite", "snapshot", snapshotPath, "sqlite", sqlitePath)
	n, err := importSnapshot(ctx, snap, sqlitePath, migrationsDir, driver)
	if err != nil {
		removeDatabase(sqlitePath, log)
		return n, err
	}
	log.Info("snapshot import completed", "sessions", n, "audit", len(snap.Audit))
	return n, nil
}

// removeDatabase deletes a partially imported database so the next start
// retries the import.
func removeDatabase(path string, log *logger.Logger) {
	for _, p := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("remove partial sqlite file", "path", p, "error", err)
		}
	}
}

func importSnapshot(ctx context.Context, snap *api.Snapshot, sqlitePath, migrationsDir, driver string) (int, error) {
	conn, err := dbstore.Open(driver, sqlitePath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	if _, err := dbstore.RunMigrations(conn, migrationsDir); err != nil {
		return 0, fmt.Errorf("run migrations: %w", err)
	}
	dst, err := dbstore.NewSQLiteStore(conn)
	if err != nil {
		return 0, fmt.Errorf("init sqlite store: %w", err)
	}
	n, err := dst.Import(ctx, snap)
	if err != nil {
		return n, fmt.Errorf("copy data: %w", err)
	}
	return n, nil
}

var migrateSnapshot string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQLite migrations and optionally import a JSON snapshot",
	Long: `Create or upgrade the SQLite schema at store.path.

With --snapshot, sessions and audit entries from a memory-store snapshot are
copied in; session ids already present are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()
		driver := cfg.Store.Driver
		if driver == config.StoreMemory {
			driver = dbstore.DriverCGO
		}
		conn, err := dbstore.Open(driver, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer conn.Close()
		applied, err := dbstore.RunMigrations(conn, cfg.Store.MigrationsDir)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(applied))
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
		}
		if migrateSnapshot == "" {
			return nil
		}
		snap, err := api.ReadSnapshot(migrateSnapshot)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		st, err := dbstore.NewSQLiteStore(conn)
		if err != nil {
			return err
		}
		n, err := st.Import(cmd.Context(), snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d session(s)\n", n)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSnapshot, "snapshot", "", "JSON snapshot written by the memory store")
}
