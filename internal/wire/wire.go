// Package wire provides dependency injection for the ordinal bus.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/ordinal/internal/adapters/fsstore"
	"github.com/example/ordinal/internal/adapters/responder"
	"github.com/example/ordinal/internal/adapters/sqlite"
	"github.com/example/ordinal/internal/app"
	"github.com/example/ordinal/internal/config"
	"github.com/example/ordinal/internal/logging"
	"github.com/example/ordinal/internal/ports/primary"
	"github.com/example/ordinal/internal/ports/secondary"
)

var (
	cfg            *config.Config
	busService     primary.BusService
	monitorService primary.MonitorService
	once           sync.Once
)

// Config returns the loaded bus configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// BusService returns the singleton BusService instance.
func BusService() primary.BusService {
	once.Do(initServices)
	return busService
}

// MonitorService returns the singleton MonitorService instance.
func MonitorService() primary.MonitorService {
	once.Do(initServices)
	return monitorService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Debug)

	// Secondary adapters: directory store, activity log, responders.
	store, err := fsstore.New(cfg.BusDir)
	if err != nil {
		log.Fatalf("failed to initialize bus store: %v", err)
	}

	db, err := sqlite.Open(cfg.ActivityDBPath())
	if err != nil {
		log.Fatalf("failed to initialize activity log: %v", err)
	}
	activity := sqlite.NewActivityLogRepository(db)

	engine := buildResponder("answer-engine", cfg.EngineCommand)
	relay := buildResponder("human-relay", cfg.RelayCommand)
	router := app.NewStaticRouter(engine, relay)

	// Services (primary ports implementation).
	busService = app.NewBusService(store, activity, cfg.PollInterval, logger)
	monitorService = app.NewMonitorService(store, router, activity, cfg.DrainInterval, logger)
}

func buildResponder(name string, command []string) secondary.Responder {
	if len(command) == 0 {
		return responder.NewUnavailable(name)
	}
	r, err := responder.NewCommandResponder(name, command)
	if err != nil {
		log.Fatalf("failed to configure responder %s: %v", name, err)
	}
	return r
}
