// Package application composes the process: config, database, state and the
// HTTP server for the api command, plus the shared bootstrap the other
// commands reuse.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"repairbox/internal/config"
	"repairbox/internal/database"
	"repairbox/internal/handler"
	"repairbox/internal/logger"
	"repairbox/internal/router"
	"repairbox/internal/service"
	"repairbox/internal/smsgw"
	"repairbox/internal/store"
)

// Bootstrap opens the database, runs migrations and loads the persisted
// state into a ready service. Every command entry point goes through it.
func Bootstrap(cfg *config.Config) (*service.RepairService, *slog.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := database.MigrateUp(db); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	gw := store.NewGateway(db, log)
	sms := smsgw.NewClient(cfg.SMSGatewayURL, log)
	svc := service.NewRepairService(gw, sms, log)
	if err := svc.Load(cfg.SeedSampleData); err != nil {
		return nil, nil, fmt.Errorf("load state: %w", err)
	}
	return svc, log, nil
}

// API is the HTTP server mode.
type API struct {
	cfg     *config.Config
	svc     *service.RepairService
	log     *slog.Logger
	httpSrv *http.Server
}

func NewAPI(cfg *config.Config) (*API, error) {
	svc, log, err := Bootstrap(cfg)
	if err != nil {
		return nil, err
	}

	h := router.New(router.Deps{
		Device:    handler.NewDeviceHandler(svc),
		Day:       handler.NewDayHandler(svc),
		Artifact:  handler.NewArtifactHandler(svc),
		Selection: handler.NewSelectionHandler(svc),
		Backup:    handler.NewBackupHandler(svc),
		Insight:   handler.NewInsightHandler(svc),
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, svc: svc, log: log, httpSrv: httpSrv}, nil
}

// Run starts the HTTP server and the background tickers, blocks until ctx is
// cancelled, then shuts down gracefully and flushes state one last time.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("HTTP server listening", "addr", a.httpSrv.Addr)
	a.log.Info("endpoints",
		"swagger", base+"/swagger",
		"health", base+"/health",
		"api", base+"/api/v1/")

	bgCtx, bgCancel := context.WithCancel(ctx)
	defer bgCancel()
	go a.svc.RunBackground(bgCtx, a.cfg.AutosaveInterval, a.cfg.TimeTrackInterval)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("http server", "error", err)
		}
	}()

	<-ctx.Done()
	bgCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.svc.Save(); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	a.log.Info("stopped")
	return nil
}
