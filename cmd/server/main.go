package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bakehouse-pos/api/internal/config"
	"github.com/bakehouse-pos/api/internal/logger"
	"github.com/bakehouse-pos/api/internal/router"
	"github.com/bakehouse-pos/api/internal/service"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/bakehouse-pos/api/internal/ws"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newSheetClient(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("spreadsheet backend")
	}
	st := store.New(client, store.WithMovementsTab(cfg.MovementsTab))
	if err := st.EnsureSystemTabs(ctx); err != nil {
		log.WithError(err).Error("ensure system tabs")
	}
	if cfg.SheetsBackend == config.BackendMemory {
		bootstrapMemory(ctx, st, cfg.Seed, log)
	}

	hub := ws.NewHub(log.WithField("component", "ws"))
	go hub.Run(ctx)

	r := router.New(cfg, router.Deps{
		Store:  st,
		Orders: service.NewOrderService(st, hub, nil),
		Stocks: service.NewStockService(st, hub, nil),
		Hub:    hub,
		Log:    log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "backend": cfg.SheetsBackend}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
}

// bootstrapMemory seeds a fresh in-memory spreadsheet from SEED_* so the
// API has a login to start from.
func bootstrapMemory(ctx context.Context, st *store.Store, seed config.SeedConfig, log logrus.FieldLogger) {
	if seed.Username == "" {
		log.Warn("SEED_USERNAME is empty; no login exists on the memory backend")
	}
	res, err := st.Seed(ctx, store.SeedOptions{
		Locations: seed.Locations,
		Username:  seed.Username,
		PIN:       seed.PIN,
	})
	if err != nil {
		log.WithError(err).Fatal("seed memory backend")
	}
	log.WithFields(logrus.Fields{
		"locations": res.Created,
		"owner":     seed.Username,
	}).Info("memory backend seeded")
}

func newSheetClient(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (sheet.Client, error) {
	if cfg.SheetsBackend == config.BackendMemory {
		log.Warn("using in-memory spreadsheet; data is lost on exit")
		return sheet.NewMemory(), nil
	}

	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}
	g, err := sheet.NewGoogle(ctx, cfg.SpreadsheetID, creds)
	if err != nil {
		return nil, err
	}
	if err := g.Ping(ctx); err != nil {
		return nil, err
	}
	return g, nil
}
