package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"eve-courier/internal/config"
	"eve-courier/internal/db"
	"eve-courier/internal/esi"
	"eve-courier/internal/graph"
	"eve-courier/internal/logger"
	"eve-courier/internal/manager"
	"eve-courier/internal/market"
	"eve-courier/internal/sde"
	"eve-courier/internal/zkillboard"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "courier.toml", "path to the TOML config file")
	routeOnce := flag.Bool("route", false, "compute one route, print it, and exit")
	historyCount := flag.Int("history", 0, "print the N most recent archived routes and exit")
	flag.Parse()

	logger.Banner(version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Config", fmt.Sprintf("Failed to load config: %v", err))
		os.Exit(1)
	}

	wd, _ := os.Getwd()
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(wd, "data")
	}
	os.MkdirAll(dataDir, 0755)

	database, err := db.Open(dataDir)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	if *historyCount > 0 {
		printHistory(database, *historyCount)
		return
	}

	logger.Section("Static Data")
	data, err := sde.Load(dataDir, cfg.Regions)
	if err != nil {
		logger.Error("SDE", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}
	logger.Stats("Locations", fmt.Sprintf("%d", len(data.Locations)))
	logger.Stats("Item types", fmt.Sprintf("%d", len(data.Types)))

	if cfg.DangerFeed && len(cfg.Ship.DangerZones) > 0 {
		logger.Section("Danger Zones")
		zkill := zkillboard.NewClient()
		if zkill.HealthCheck() {
			cfg.Ship.DangerZones = zkillboard.Calibrate(zkill, data, cfg.Ship.DangerZones)
		} else {
			logger.Warn("Zkillboard", "Health check failed, keeping configured bonuses")
		}
	}

	logger.Section("Navigation Graph")
	navGraph := graph.New(data, &cfg.Ship, database)
	logger.Success("Graph", "Navigation graph ready")

	esiClient := esi.NewClient(cfg.ESIToken, cfg.CharacterID)
	if !esiClient.HealthCheck() {
		logger.Warn("ESI", "Health check failed, continuing anyway")
	}

	orders := market.New(esiClient, data.Types, cfg.Regions)
	mgr := manager.New(cfg, navGraph, orders, esiClient, database)

	logger.Section("Market Data")
	if _, err := orders.UpdateOrders(); err != nil {
		logger.Error("Market", fmt.Sprintf("Initial fetch failed: %v", err))
		os.Exit(1)
	}
	logger.Success("Market", "Order snapshot loaded")

	if *routeOnce {
		if err := mgr.CreateRoute(); err != nil {
			logger.Error("Route", fmt.Sprintf("No route: %v", err))
			os.Exit(1)
		}
		printRoute(mgr)
		return
	}

	logger.Section("Tracking")
	interval := time.Duration(cfg.RefreshSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		mgr.Update()

		if steps, _ := mgr.Route(); steps == nil {
			if err := mgr.CreateRoute(); err != nil {
				logger.Info("Route", fmt.Sprintf("Waiting for opportunities: %v", err))
			} else {
				printRoute(mgr)
			}
		}
	}
}

func printHistory(database *db.DB, limit int) {
	records := database.RecentRoutes(limit)
	if len(records) == 0 {
		logger.Info("History", "No archived routes")
		return
	}
	logger.Section("Route History")
	for _, r := range records {
		logger.Info("History", fmt.Sprintf("%s  %s  %.0f ISK/s, net %.0f ISK, %d stops",
			r.CreatedAt.Format("2006-01-02 15:04"), r.ID, r.Info.ProfitRate, r.Info.NetProfit, len(r.Steps)))
	}
}

func printRoute(mgr *manager.Manager) {
	steps, info := mgr.Route()
	if info == nil {
		return
	}
	logger.Section("Route Plan")
	logger.Stats("Profit rate", fmt.Sprintf("%.0f ISK/s", info.ProfitRate))
	logger.Stats("Net profit", fmt.Sprintf("%.0f ISK", info.NetProfit))
	logger.Stats("Capital", fmt.Sprintf("%.0f ISK", info.Capital))
	logger.Stats("Travel time", fmt.Sprintf("%.0fs", info.TransportTime))
	for i, step := range steps {
		logger.Info("Route", fmt.Sprintf("%2d. %s", i+1, step.Label))
		for _, action := range step.Actions {
			logger.Info("Route", fmt.Sprintf("      %s %d x %s @ %.2f ISK", action.Type, action.Quantity, action.Item, action.Price))
		}
	}
}
