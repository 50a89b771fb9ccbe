// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/expert-survey/claims"
	"github.com/danielhkuo/expert-survey/cliparse"
	"github.com/danielhkuo/expert-survey/db"
	"github.com/danielhkuo/expert-survey/handlers"
	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/navigator"
	"github.com/danielhkuo/expert-survey/router"
	"github.com/danielhkuo/expert-survey/session"
	"github.com/danielhkuo/expert-survey/sheet"
	"github.com/danielhkuo/expert-survey/store"
	"github.com/danielhkuo/expert-survey/submissions"
)

// openWorkbook connects to the configured spreadsheet backend
func openWorkbook(ctx context.Context, cfg cliparse.Config) (sheet.Workbook, error) {
	switch cfg.Backend {
	case cliparse.BackendSheets:
		wb, err := sheet.OpenGoogle(ctx, cfg.SheetID, sheet.Credentials{
			JSON: cfg.CredentialsJSON,
			File: cfg.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		return wb, nil
	case cliparse.BackendXLSX:
		wb, err := sheet.OpenXLSX(cfg.XLSXPath)
		if err != nil {
			return nil, err
		}
		return wb, nil
	case cliparse.BackendMemory:
		wb := sheet.NewMemoryWorkbook()
		if cfg.MemorySeedCSV != "" {
			f, err := os.Open(cfg.MemorySeedCSV)
			if err != nil {
				return nil, fmt.Errorf("failed to open seed csv: %w", err)
			}
			defer f.Close()
			if err := wb.SeedCSV(cfg.SheetTab, f); err != nil {
				return nil, err
			}
		}
		return wb, nil
	}
	return nil, fmt.Errorf("unknown sheet backend %q", cfg.Backend)
}

// openSessions returns the session store and, for SQL stores, its connection
func openSessions(cfg cliparse.Config) (session.Store, *sql.DB, error) {
	if cfg.DatabaseType == cliparse.DatabaseMemory {
		return session.NewMemoryStore(), nil, nil
	}

	dbConn, err := db.Open(cfg.DatabaseType, cfg.SessionDatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		dbConn.Close()
		return nil, nil, err
	}
	return session.NewSQLStore(dbConn), dbConn, nil
}

// run wires every component and serves until the server is closed. Setup
// errors are returned so deferred closes still run.
func run(ctx context.Context, cancel context.CancelFunc, cfg cliparse.Config) error {
	// Connect to the spreadsheet
	wb, err := openWorkbook(ctx, cfg)
	if err != nil {
		return fmt.Errorf("workbook connection failed (backend %s): %w", cfg.Backend, err)
	}
	defer wb.Close()

	// The live sheet must already have its patients tab
	var patients sheet.Table
	if cfg.Backend == cliparse.BackendSheets {
		patients, err = wb.Worksheet(ctx, cfg.SheetTab)
	} else {
		patients, err = sheet.OpenOrAdd(ctx, wb, cfg.SheetTab)
	}
	if err != nil {
		return fmt.Errorf("patients tab %q unavailable: %w", cfg.SheetTab, err)
	}

	s := store.New(patients)
	if _, err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("patients migration failed: %w", err)
	}
	slog.Info("Patients schema ready", "tab", cfg.SheetTab, "backend", cfg.Backend)

	var ledger *submissions.Ledger
	if cfg.Policy == models.PolicyLedger {
		tab, err := sheet.OpenOrAdd(ctx, wb, cfg.SubmissionsTab)
		if err != nil {
			return fmt.Errorf("submissions tab %q unavailable: %w", cfg.SubmissionsTab, err)
		}
		ledger = submissions.NewLedger(tab)
		if _, err := ledger.Migrate(ctx); err != nil {
			return fmt.Errorf("submissions migration failed: %w", err)
		}
	}

	policy, err := submissions.NewPolicy(cfg.Policy, s, ledger)
	if err != nil {
		return fmt.Errorf("submission policy setup failed: %w", err)
	}
	claimManager := claims.NewManager(s, cfg.ClaimMode, cfg.ClaimTTL)

	sessionStore, dbConn, err := openSessions(cfg)
	if err != nil {
		return fmt.Errorf("session database setup failed (type %s): %w", cfg.DatabaseType, err)
	}
	if dbConn != nil {
		defer dbConn.Close()
	}

	if cfg.ClaimSweepInterval > 0 && claimManager.Locking() {
		go claimManager.Sweep(ctx, cfg.ClaimSweepInterval)
		slog.Info("Stale claim sweeper running", "interval", cfg.ClaimSweepInterval, "ttl", cfg.ClaimTTL)
	}

	deps := handlers.Deps{
		Store:     s,
		Claims:    claimManager,
		Policy:    policy,
		Navigator: navigator.New(s, policy),
		Sessions: session.NewManager(sessionStore, session.Options{
			Secret:   cfg.SessionSecret,
			SameSite: cfg.CookieSameSite,
			Secure:   cfg.CookieSecure,
		}),
	}

	// Create server
	server := http.Server{
		Handler: router.NewRouter(deps, cfg),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "claim_mode", cfg.ClaimMode, "policy", cfg.Policy)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	slog.Info("Server closed")
	return nil
}

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	err = run(ctx, cancel, cfg)
	cancel()
	if err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
