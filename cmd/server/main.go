// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/melodia/internal/api/connect"
	"github.com/osa030/melodia/internal/api/media"
	"github.com/osa030/melodia/internal/app/account"
	"github.com/osa030/melodia/internal/app/catalog"
	"github.com/osa030/melodia/internal/app/filter"
	"github.com/osa030/melodia/internal/app/session"
	"github.com/osa030/melodia/internal/infra/config"
	"github.com/osa030/melodia/internal/infra/logger"
	mediadriver "github.com/osa030/melodia/internal/infra/media"
	"github.com/osa030/melodia/internal/infra/spotify"
	"github.com/osa030/melodia/internal/infra/store"
)

var (
	app        = kingpin.New("melodia-server", "Melodia music streaming server")
	configPath = app.Flag("config", "Path to config file (.yaml or .toml)").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to JSON log file (default: console)").String()

	startCmd = app.Command("start", "Start the server (default)").Default()

	listFiltersCmd = app.Command("list-filters", "List available upload filters and exit")

	importCmd         = app.Command("import-spotify", "Import a public Spotify playlist into the catalog")
	importPlaylistURL = importCmd.Arg("playlist-url", "Spotify playlist URL, URI or ID").Required().String()

	migrateCmd      = app.Command("migrate", "Show or roll back the database schema version")
	migrateRollback = migrateCmd.Flag("rollback", "Revert the most recent migration").Bool()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	closer, err := logger.Init(logger.FromFlags(*verbose, *logfile, false))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	switch command {
	case importCmd.FullCommand():
		err = importSpotify(cfg, *importPlaylistURL)
	case migrateCmd.FullCommand():
		err = migrate(cfg, *migrateRollback)
	case startCmd.FullCommand():
		err = run(cfg)
	}
	if err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		closer.Close()
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	accounts := account.NewService(account.Config{
		BcryptCost:       cfg.Auth.BcryptCost,
		MinPasswordChars: cfg.Auth.MinPasswordChars,
	}, db, account.NewTokenRegistry())

	if cfg.ShouldSeed() {
		if err := seed(ctx, db, accounts, cfg.Auth.DemoPassword); err != nil {
			return err
		}
	}

	chain, err := filter.BuildChain(filterSettings(cfg), db)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	driver, err := newDriver(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid driver config")
	}

	catalogService := catalog.NewService(db)
	sessionMgr := session.NewManager(session.Config{
		InitialVolume:   cfg.Playback.InitialVolume,
		EventBufferSize: cfg.Playback.EventBufferSize,
	}, driver, catalogService)

	mux := http.NewServeMux()
	apiconnect.Register(mux, apiconnect.Services{
		Session:  sessionMgr,
		Catalog:  catalogService,
		Accounts: accounts,
		LoginRate: apiconnect.RateLimitConfig{
			PerSecond: cfg.Auth.LoginRatePerSec,
			Burst:     cfg.Auth.LoginBurst,
		},
	})
	media.NewHandler(media.Config{
		MediaDir:        cfg.Storage.MediaDir,
		MaxRequestBytes: cfg.Upload.MaxRequestMB << 20,
	}, accounts, chain, db, cfg).Register(mux)

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		zlog.Info().Msgf("Received shutdown signal: %s", sig)
	case err := <-serverErrCh:
		sessionMgr.Close()
		return errors.Wrap(err, "server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutMs)*time.Millisecond)
	defer cancel()

	// Close the session first so state streams end before the server drains
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	db, err := store.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open catalog")
	}
	return db, nil
}

// seed fills an empty catalog. The demo account can only sign in when a
// demo password is configured.
func seed(ctx context.Context, db *store.Store, accounts *account.Service, demoPassword string) error {
	hash := ""
	if demoPassword != "" {
		h, err := accounts.HashPassword(demoPassword)
		if err != nil {
			return err
		}
		hash = h
	} else {
		zlog.Info().Msg("Demo password not configured, demo account login disabled")
	}
	if err := db.Seed(ctx, hash); err != nil {
		return errors.Wrap(err, "failed to seed catalog")
	}
	return nil
}

func newDriver(cfg *config.Config) (*mediadriver.ClockDriver, error) {
	clockCfg, err := mediadriver.DecodeClockConfig(cfg.Playback.Driver.Settings)
	if err != nil {
		return nil, err
	}

	var prober mediadriver.Prober
	if clockCfg.ProbeSources {
		prober = mediadriver.NewSourceProber(cfg.Storage.MediaDir,
			time.Duration(clockCfg.ProbeTimeoutMs)*time.Millisecond)
	}
	zlog.Info().Msgf("Media driver: type=%s tick=%dms probe=%v", cfg.Playback.Driver.Type, clockCfg.TickMs, clockCfg.ProbeSources)
	return mediadriver.NewClockDriver(clockCfg, prober), nil
}

func filterSettings(cfg *config.Config) map[string]filter.Settings {
	settings := make(map[string]filter.Settings, len(cfg.Filters))
	for name, f := range cfg.Filters {
		settings[name] = filter.Settings{Enabled: f.Enabled, Settings: f.Settings}
	}
	return settings
}

// importSpotify copies a Spotify playlist into the catalog.
func importSpotify(cfg *config.Config, playlistURL string) error {
	ctx := context.Background()

	if !cfg.HasSpotifyCredentials() {
		return spotify.ErrMissingCredentials
	}
	client, err := spotify.New(ctx, spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		Market:       cfg.Spotify.Market,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create Spotify client")
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := catalog.ImportPlaylist(ctx, client, db, playlistURL)
	if err != nil {
		return errors.Wrap(err, "import failed")
	}

	fmt.Printf("Imported %q (id=%s)\n", result.Name, result.PlaylistID)
	fmt.Printf("  added: %d, reused: %d, skipped (no preview): %d\n", result.Added, result.Reused, result.Skipped)
	return nil
}

// migrate prints the schema version, optionally after rolling back one step.
func migrate(cfg *config.Config, rollback bool) error {
	ctx := context.Background()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if rollback {
		if err := db.Rollback(ctx); err != nil {
			return errors.Wrap(err, "rollback failed")
		}
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Schema version: %d\n", version)
	return nil
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	registry := filter.GetRegistered()
	for _, name := range filter.Names() {
		f := registry[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}
