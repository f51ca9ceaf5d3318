package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bakehouse-pos/api/internal/config"
	"github.com/bakehouse-pos/api/internal/logger"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/store"
)

func main() {
	// CLI flags; SEED_* variables fill in anything left empty.
	locations := flag.String("locations", "", "Comma-separated location ids to register, e.g. SILOM,ARI")
	username := flag.String("username", "", "Owner username")
	pin := flag.String("pin", "", "Owner PIN")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	// Memory mode seeds itself inside the server process.
	if cfg.SheetsBackend != config.BackendGoogle {
		log.Fatal("seed needs SHEETS_BACKEND=google")
	}

	opts := store.SeedOptions{
		Locations: cfg.Seed.Locations,
		Username:  cfg.Seed.Username,
		PIN:       cfg.Seed.PIN,
	}
	if *locations != "" {
		opts.Locations = strings.Split(*locations, ",")
	}
	if *username != "" {
		opts.Username = *username
	}
	if *pin != "" {
		opts.PIN = *pin
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	creds, err := cfg.Credentials()
	if err != nil {
		log.WithError(err).Fatal("credentials")
	}
	client, err := sheet.NewGoogle(ctx, cfg.SpreadsheetID, creds)
	if err != nil {
		log.WithError(err).Fatal("sheets client")
	}
	if err := client.Ping(ctx); err != nil {
		log.WithError(err).Fatal("spreadsheet access")
	}
	st := store.New(client, store.WithMovementsTab(cfg.MovementsTab))

	res, err := st.Seed(ctx, opts)
	if err != nil {
		log.WithError(err).Fatal("seed")
	}
	for _, id := range res.Created {
		log.WithField("location", id).Info("location registered")
	}
	for _, id := range res.Existing {
		log.WithField("location", id).Info("location already registered")
	}
	switch {
	case res.OwnerCreated:
		log.WithField("username", opts.Username).Info("owner created")
	case res.OwnerExisted:
		log.WithField("username", opts.Username).Info("owner already exists")
	default:
		log.Info("no owner username given; skipping staff seed")
	}
}
