package commands

import (
	"appdeck/cmd/appdeck/globals"
	"appdeck/internal/catalog"
	"appdeck/internal/components/chrono"
	"appdeck/internal/components/telemetry"
	"appdeck/internal/favorites"
	"appdeck/internal/favorites/db"
	"appdeck/internal/scrapers/playstore"
	"context"
	"database/sql"
	"fmt"
)

// app is everything a command needs to talk to the catalog and the favorites.
type app struct {
	config  Config
	tel     telemetry.API
	service *catalog.Service
	store   *favorites.Store
	db      *sql.DB
}

func openApp(ctx context.Context) (*app, error) {
	g := globals.Get(ctx)

	cfg, err := readConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg, err = cfg.targeting(g.Developer)
	if err != nil {
		return nil, err
	}

	var output telemetry.InstrumentOutput
	if g.DumpHttp != "" {
		fsOutput, err := telemetry.NewFilesystemOutput(g.DumpHttp)
		if err != nil {
			return nil, fmt.Errorf("create http dump dir: %w", err)
		}
		output = fsOutput
	}

	client := playstore.NewClient(playstore.ClientOptions{
		RequestsPerSecond: cfg.Http.RequestsPerSecond,
		BypassCloudflare:  cfg.Http.BypassCloudflare,
		Output:            output,
	}, g.Telemetry)

	database, err := cfg.Favorites.OpenAndMigrate(db.Schema)
	if err != nil {
		return nil, fmt.Errorf("open favorites: %w", err)
	}
	store := favorites.NewStore(database, chrono.StandardTime{}, g.Telemetry)

	service, err := catalog.NewService(
		client,
		store,
		cfg.Catalog.options(),
		g.Telemetry,
	)
	if err != nil {
		store.Close()
		database.Close()
		return nil, err
	}

	return &app{
		config:  cfg,
		tel:     g.Telemetry,
		service: service,
		store:   store,
		db:      database,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.db.Close()
}
