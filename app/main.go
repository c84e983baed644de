package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/libria-client/app/anilibria"
	"github.com/lysyi3m/libria-client/app/api"
	"github.com/lysyi3m/libria-client/app/cache"
	"github.com/lysyi3m/libria-client/app/cfg"
	"github.com/lysyi3m/libria-client/app/database"
	"github.com/lysyi3m/libria-client/app/fetch"
	"github.com/lysyi3m/libria-client/app/notify"
	"github.com/lysyi3m/libria-client/app/release"
	"github.com/lysyi3m/libria-client/app/settings"
	"github.com/lysyi3m/libria-client/app/slots"
	"github.com/lysyi3m/libria-client/app/state"
	"github.com/lysyi3m/libria-client/app/tasks"
	"golang.org/x/text/language"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Libria client", "version", appCfg.Version)

	clientCfg, err := anilibria.LoadConfig(appCfg.ConfigFile)
	if err != nil {
		slog.Error("Failed to load client configuration", "file", appCfg.ConfigFile, "error", err)
		os.Exit(1)
	}
	if appCfg.UserAgent != "" {
		clientCfg.UserAgent = appCfg.UserAgent
	}

	client := anilibria.NewClient(clientCfg, appCfg.Session)
	slog.Info("API client configured", "base_url", clientCfg.BaseURL, "authorized", client.IsAuthorized())

	settingsStore, closeStore := openSettings(appCfg.DBPath)
	defer closeStore()

	recorder := notify.NewRecorder(0)
	sinks := notify.Multi{notify.LogSink{}, recorder}
	ntfy := notify.NewNtfySink(appCfg.NtfyTopic, clientCfg.UserAgent, 10*time.Second)
	if ntfy != nil {
		sinks = append(sinks, ntfy)
		defer ntfy.Wait()
		slog.Info("Forwarding notifications to ntfy")
	}

	var assets fetch.AssetFetcher = client
	var posterCache *cache.Cache
	if appCfg.RedisAddr != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		posterCache, err = cache.NewCache(connectCtx, appCfg.RedisAddr)
		cancel()
		if err != nil {
			slog.Warn("Poster cache disabled", "error", err)
		} else {
			defer posterCache.Close()
			assets = cache.NewPosterCache(client, posterCache, time.Duration(appCfg.PosterTTL)*time.Second)
		}
	}

	dates := dateFormatter(appCfg.Locale)
	slog.Info("Date locale selected", "locale", dates.Tag().String())

	deps := fetch.Deps{
		Transformer:       release.NewTransformer(release.NewPlaylistTransformer(), dates),
		Assets:            assets,
		Slots:             slots.NewManager(),
		Stores:            state.NewStores(),
		Sink:              sinks,
		PosterConcurrency: appCfg.PosterConcurrency,
	}
	releases := fetch.NewReleases(client, deps)
	favorites := fetch.NewFavorites(client, settingsStore, deps)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.RefreshInterval)
	scheduler := tasks.NewScheduler(releases, favorites, tasks.Options{
		Interval:    time.Duration(appCfg.RefreshInterval) * time.Second,
		WorkerCount: appCfg.WorkerCount,
	})
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(releases, favorites, client, deps.Stores, recorder)
	if posterCache != nil {
		handler.AddHealthReporter("cache", posterCache)
	}
	if reporter, ok := settingsStore.(api.HealthReporter); ok {
		handler.AddHealthReporter("settings", reporter)
	}
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:        ":" + appCfg.Port,
		Handler:     server,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Libria client shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// openSettings returns the SQLite settings store, or an in-memory one when no
// path is configured or the database cannot be opened.
func openSettings(path string) (settings.Store, func()) {
	if path == "" {
		slog.Info("Settings kept in memory")
		return settings.NewMemory(), func() {}
	}

	db, err := database.NewConnection(path)
	if err != nil {
		slog.Warn("Settings database unavailable, keeping settings in memory", "path", path, "error", err)
		return settings.NewMemory(), func() {}
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Warn("Settings migrations failed, keeping settings in memory", "error", err)
		db.Close()
		return settings.NewMemory(), func() {}
	}
	slog.Debug("Settings database ready", "path", path, "version", version, "dirty", dirty)

	return database.NewSettingsRepository(db), func() { db.Close() }
}

func dateFormatter(locale string) *release.DateFormatter {
	if locale == "" {
		return release.DefaultDateFormatter()
	}

	tag, err := language.Parse(locale)
	if err != nil {
		slog.Warn("Invalid locale, using system locale", "locale", locale, "error", err)
		return release.DefaultDateFormatter()
	}
	return release.NewDateFormatter(tag)
}
