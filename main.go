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

	"chartsync/internal/charts"
	"chartsync/internal/config"
	"chartsync/internal/crossfilter"
	"chartsync/internal/crossfilter/remote"
	"chartsync/internal/dashboard"
	"chartsync/internal/datasource"
	"chartsync/internal/logger"
	"chartsync/internal/mocks"
	"chartsync/internal/models"
	"chartsync/internal/render"
	"chartsync/internal/server"
	"chartsync/internal/storage"
)

// loadData resolves the layout and records for the configured data source. Remote mode
// returns an engine instead of records.
func loadData(ctx context.Context, cfg *config.Config) (*models.Layout, []crossfilter.Record, *remote.Engine, error) {
	if cfg.DataSource == config.SourceMock {
		return mocksLayout(cfg)
	}

	layout, err := models.LoadLayout(cfg.LayoutPath)
	if err != nil {
		return nil, nil, nil, err
	}

	var src datasource.Source
	switch cfg.DataSource {
	case config.SourceCSV:
		src = datasource.CSVSource{Path: cfg.DataPath}
	case config.SourceFeed:
		src = datasource.FeedSource{URL: cfg.FeedURL, Loader: datasource.NewFeedLoader()}
	case config.SourceRemote:
		return layout, nil, remote.NewEngine(cfg.RemoteURL), nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported data source %q", cfg.DataSource)
	}

	records, err := src.Load(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load records: %w", err)
	}
	return layout, records, nil, nil
}

func mocksLayout(cfg *config.Config) (*models.Layout, []crossfilter.Record, *remote.Engine, error) {
	layout, records, err := mocks.NewMockService(cfg.MocksDir).LoadMockData()
	return layout, records, nil, err
}

// newDashboard builds the dashboard and its renderers from cfg
func newDashboard(ctx context.Context, cfg *config.Config) (*dashboard.Dashboard, *render.PNGRenderer, *render.EChartsRenderer, error) {
	layout, records, engine, err := loadData(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := storage.NewStorageClient(ctx, storage.DeploymentMode(cfg.StorageMode), cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	images := render.NewPNGRenderer("")
	html := render.NewEChartsRenderer()
	d, err := dashboard.New(dashboard.Options{
		Layout:     layout,
		Records:    records,
		Remote:     engine,
		Renderer:   render.Fanout{images, html},
		Storage:    store,
		EventDelay: cfg.EventDelay,
	})
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	if err := d.Render(); err != nil {
		if !errors.Is(err, charts.ErrInvalidState) {
			d.Close()
			return nil, nil, nil, fmt.Errorf("initial render failed: %w", err)
		}
		logger.Warn("Some charts could not be drawn yet", logger.Fields{"error": err.Error()})
	}
	return d, images, html, nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting chart dashboard service", logger.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"data_source": cfg.DataSource,
		"storage":     cfg.StorageMode,
		"version":     config.Version(),
	})

	d, images, html, err := newDashboard(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to build dashboard", err)
	}

	srv := server.NewServer(cfg, d, images, html)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", err)
	}

	logger.Info("Server stopped")
}
