package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	"github.com/fuelport/backend/internal/auth"
	"github.com/fuelport/backend/internal/backfill"
	"github.com/fuelport/backend/internal/config"
	"github.com/fuelport/backend/internal/dashboard"
	"github.com/fuelport/backend/internal/ledger"
	"github.com/fuelport/backend/internal/middleware"
	"github.com/fuelport/backend/internal/party"
	"github.com/fuelport/backend/internal/receipt"
	"github.com/fuelport/backend/internal/router"
	"github.com/fuelport/backend/internal/transfer"
	"github.com/fuelport/backend/internal/wallet"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// .env is optional; deployed environments set real variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL. Ensure it is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL")

	// River migrations (job queue tables only; app schema is in migrations/).
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}

	// Ledger reader + balance calculator
	ledgerRepo := ledger.NewRepository(pool)
	walletSvc := wallet.NewService(ledgerRepo, cfg.StoreTimeout)

	// Transfer state machine
	transferRepo := transfer.NewRepository(pool)
	transferSvc := transfer.NewService(transferRepo, walletSvc, cfg.StoreTimeout)

	// Parties
	partyRepo := party.NewRepository(pool)
	partySvc := party.NewService(partyRepo, cfg.StoreTimeout)

	// Backfill runs as on-demand River jobs
	backfillRepo := backfill.NewRepository(pool)
	backfillSvc := backfill.NewService(backfillRepo, cfg.StoreTimeout)

	workers := river.NewWorkers()
	river.AddWorker(workers, backfill.NewWorker(backfillSvc, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}
	enqueueBackfill := func(ctx context.Context, args backfill.JobArgs) error {
		_, err := riverClient.Insert(ctx, args, nil)
		return err
	}

	// Receipts: Supabase storage when configured, otherwise attach is
	// disabled and returns a storage-unavailable error.
	var uploader receipt.Uploader
	if up, err := receipt.NewSupabaseUploader(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket); err != nil {
		slog.Warn("Receipt storage not configured, attachments disabled", "error", err)
	} else {
		uploader = up
	}
	receiptSvc := receipt.NewService(uploader, transferRepo, cfg.StoreTimeout)

	// Auth
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.JWTSecret)

	dailyCap := decimal.Zero
	if cfg.DailyPayoutCap != "" {
		if d, err := decimal.NewFromString(cfg.DailyPayoutCap); err == nil {
			dailyCap = d
		} else {
			slog.Warn("Ignoring invalid DAILY_PAYOUT_CAP", "value", cfg.DailyPayoutCap)
		}
	}

	apiRouter := router.New(router.Handlers{
		Auth:        auth.NewHandler(authSvc, logger),
		Party:       party.NewHandler(partySvc, logger),
		Wallet:      wallet.NewHandler(walletSvc, logger),
		Transfer:    transfer.NewHandler(transferSvc, logger),
		Receipt:     receipt.NewHandler(receiptSvc, logger),
		Backfill:    backfill.NewHandler(enqueueBackfill, logger),
		Dash:        dashboard.NewHandler(partySvc, walletSvc, transferSvc, logger),
		AdminAuth:   middleware.AdminAuth(authSvc),
		PayoutGuard: middleware.PayoutGuard(pool, dailyCap),
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	// Start River client (processes backfill jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
