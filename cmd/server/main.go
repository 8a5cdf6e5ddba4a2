package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivugurura/radio-landing/config"
	"github.com/ivugurura/radio-landing/internal/geo"
	"github.com/ivugurura/radio-landing/internal/ipdir"
	"github.com/ivugurura/radio-landing/internal/logging"
	"github.com/ivugurura/radio-landing/internal/music"
	"github.com/ivugurura/radio-landing/internal/notify"
	"github.com/ivugurura/radio-landing/internal/server"
	"github.com/ivugurura/radio-landing/internal/visits"
)

func main() {
	_ = godotenv.Load()
	cfg, credErr := config.LoadConfig()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if credErr != nil {
		logging.Error().Err(credErr).Str("path", cfg.CredentialsPath).Msg("Error loading config")
	}
	if cfg.Credentials.Placeholder() {
		logging.Warn().Msg("telegram credentials are placeholders, visit notifications will fail")
	}

	ipapi := geo.NewIPAPI(cfg.GeoAPIURL, cfg.HTTPClientTimeout)
	maxmind := geo.NewMaxMind(cfg.GeoIPDBPath, cfg.EnableGeoIp)
	defer maxmind.Close()
	locator := geo.NewChain(ipapi, maxmind)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := openDirectory(ctx, cfg)

	notifier := notify.NewTelegram(
		cfg.TelegramAPIURL,
		cfg.Credentials.Telegram.BotToken,
		cfg.Credentials.Telegram.ChatID,
		cfg.HTTPClientTimeout,
	)
	tracker := visits.NewTracker(dir, locator, notifier)
	library := music.NewLibrary(cfg.MusicDir)

	opts := []server.Option{server.WithMetrics(cfg.EnableMetrics)}
	if cfg.HomepagePath != "" {
		opts = append(opts, server.WithHomepagePath(cfg.HomepagePath))
	}
	srv := server.New(library, tracker, opts...)

	logging.Info().
		Str("music_dir", library.Dir()).
		Bool("geoip_offline", maxmind.Available()).
		Msg("server: starting")

	if err := srv.ListenAndServe(ctx, cfg.ListenAddr(), cfg.ShutdownTimeout); err != nil {
		logging.Fatal().Err(err).Msg("server failed")
	}
}

// openDirectory returns the configured ip directory. A redis backend that
// cannot be reached falls back to the JSON file.
func openDirectory(ctx context.Context, cfg *config.Config) ipdir.Directory {
	store := ipdir.NewStore(cfg.IPDataPath)
	if cfg.IPDirectory != "redis" {
		return store
	}

	rdb := ipdir.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if rdb == nil {
		logging.Warn().Msg("ipdir: REDIS_ADDR empty, using " + store.Path())
		return store
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		if !errors.Is(err, context.Canceled) {
			logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("ipdir: redis unreachable, using " + store.Path())
		}
		_ = rdb.Close()
		return store
	}
	logging.Info().Str("addr", cfg.RedisAddr).Str("prefix", cfg.RedisPrefix).Msg("ipdir: using redis")
	return ipdir.NewRedisDirectory(rdb, cfg.RedisPrefix)
}
