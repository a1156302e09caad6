package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/arlo/localdash/internal/config"
	"github.com/arlo/localdash/internal/dashboard"
	"github.com/arlo/localdash/internal/database"
	"github.com/arlo/localdash/internal/database/repository"
	"github.com/arlo/localdash/internal/feed"
	"github.com/arlo/localdash/internal/location"
	"github.com/arlo/localdash/internal/tui"
	"github.com/arlo/localdash/internal/widget"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	locations := &repository.LocationRepo{DB: db}
	consents := &repository.ConsentRepo{DB: db}
	snapshots := &repository.SnapshotRepo{DB: db}

	var (
		source  location.Source
		consent location.ConsentStore
	)
	switch strings.ToLower(cfg.Location.Provider) {
	case "static":
		source = location.StaticSource{Value: location.Value{
			Latitude:  cfg.Location.Latitude,
			Longitude: cfg.Location.Longitude,
		}}
	case "none":
		source = nil
	default:
		consent = consents
		source = &location.IPSource{Consent: consents, Endpoint: cfg.Location.Endpoint}
	}

	app := tui.New(ctx, cfg, tui.Deps{
		Resolver:     location.NewResolver(source, locations),
		Orchestrator: dashboard.NewOrchestrator(),
		Registry:     widget.Defaults(),
		Feed:         feed.NewClient(cfg.Feed.URL, time.Duration(cfg.Feed.Timeout)*time.Second),
		Consent:      consent,
		Snapshots:    snapshots,
	})

	if os.Getenv("LOCALDASH_DEBUG") != "" {
		f, err := tea.LogToFile("localdash.log", "localdash")
		if err == nil {
			defer f.Close()
		}
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}
