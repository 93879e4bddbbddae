package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/gurizes/gatewarden/internal/api"
	"github.com/gurizes/gatewarden/internal/app"
	"github.com/gurizes/gatewarden/internal/app/maintenance"
	"github.com/gurizes/gatewarden/internal/bot"
	"github.com/gurizes/gatewarden/internal/cache"
	"github.com/gurizes/gatewarden/internal/database"
	"github.com/gurizes/gatewarden/internal/realtime"
	"github.com/gurizes/gatewarden/internal/services"
	"github.com/gurizes/gatewarden/internal/store"
	"github.com/gurizes/gatewarden/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gatewarden-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	st, closeStore, err := initialiseStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var configCache cache.Store
	if cfg.Cache.Redis.Enabled {
		redisCtx, cancel := context.WithTimeout(ctx, cfg.Cache.Redis.Timeout)
		redisStore, redisErr := cache.NewRedisStore(redisCtx, cache.RedisConfig{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		cancel()
		if redisErr != nil {
			log.Warn("redis unavailable; config cache disabled", zap.Error(redisErr))
		} else {
			configCache = redisStore
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
			defer redisStore.Close()
		}
	}

	hub := realtime.NewHub()

	configOpts := []services.GuildConfigOption{services.WithConfigTTL(cfg.Cache.ConfigTTL)}
	if configCache != nil {
		configOpts = append(configOpts, services.WithConfigCache(configCache))
	}
	configSvc := services.NewGuildConfigService(st, configOpts...)
	statsSvc := services.NewStatsService(st)

	verificationOpts := []services.VerificationOption{services.WithEventPublisher(hub)}

	var session *discordgo.Session
	if token := strings.TrimSpace(cfg.Discord.Token); token != "" {
		var sessionErr error
		session, sessionErr = bot.NewSession(token)
		if sessionErr != nil {
			return fmt.Errorf("initialise discord session: %w", sessionErr)
		}
		verificationOpts = append(verificationOpts, services.WithNotifier(bot.NewNotifier(session)))
	} else {
		log.Warn("discord token not configured; bot disabled")
	}

	verificationSvc := services.NewVerificationService(st, verificationOpts...)

	if session != nil {
		discordBot := bot.New(session, verificationSvc, configSvc)
		if err := discordBot.Start(); err != nil {
			log.Warn("discord bot failed to start; continuing without it", zap.Error(err))
		} else {
			defer func() {
				_ = discordBot.Stop()
			}()
		}
	}

	return serve(ctx, cfg, log, st, verificationSvc, configSvc, statsSvc, hub)
}

func serve(
	ctx context.Context,
	cfg *app.Config,
	log *zap.Logger,
	st store.Store,
	verifications *services.VerificationService,
	configs *services.GuildConfigService,
	stats *services.StatsService,
	hub *realtime.Hub,
) error {
	if cfg.Maintenance.Enabled {
		reporter := maintenance.NewReporter(st, maintenance.WithSchedule(cfg.Maintenance.Schedule))
		if err := reporter.Start(); err != nil {
			return fmt.Errorf("start maintenance jobs: %w", err)
		}
		defer func() {
			stopCtx := reporter.Stop()
			<-stopCtx.Done()
		}()
	}

	router, err := api.NewRouter(api.Services{
		Verifications: verifications,
		Configs:       configs,
		Stats:         stats,
		Hub:           hub,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// initialiseStore picks the persistence backend: the memory driver keeps all
// state in-process, anything else opens a database through gorm.
func initialiseStore(ctx context.Context, cfg *app.Config) (store.Store, func(), error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	log := logger.WithModule("database")

	if driver == "memory" {
		st := store.NewMemoryStore()
		if cfg.Demo.Seed {
			if err := store.SeedDemoData(ctx, st); err != nil {
				return nil, nil, fmt.Errorf("seed demo data: %w", err)
			}
			log.Info("demo guild seeded", zap.String("guild_id", store.DemoGuildID))
		}
		log.Info("using in-memory store")
		return st, func() {}, nil
	}

	db, err := database.Open(convertDatabaseConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db, cfg.Demo.Seed); err != nil {
		return nil, nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	st, err := store.NewDatabaseStore(db)
	if err != nil {
		return nil, nil, fmt.Errorf("initialise store: %w", err)
	}

	log.Info("database connected", zap.String("driver", driver))

	closeFn := func() {
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return
		}
		if closeErr := sqlDB.Close(); closeErr != nil {
			log.Warn("database close failed", zap.Error(closeErr))
		}
	}
	return st, closeFn, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = cfg.Database.Postgres.Password
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = cfg.Database.MySQL.Password
	}

	return dbCfg
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}
