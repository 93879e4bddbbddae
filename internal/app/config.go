package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the Gatewarden backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Discord     DiscordConfig     `mapstructure:"discord"`
	Demo        DemoConfig        `mapstructure:"demo"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes the persistence backend. The memory driver keeps
// all state in-process and is intended for demos and tests.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis     RedisCacheConfig `mapstructure:"redis"`
	ConfigTTL time.Duration    `mapstructure:"config_ttl"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DiscordConfig carries the bot credentials. An empty token disables the bot.
type DiscordConfig struct {
	Token string `mapstructure:"token"`
}

// DemoConfig toggles seeding of the demo guild.
type DemoConfig struct {
	Seed bool `mapstructure:"seed"`
}

// MaintenanceConfig controls the background pending-counts reporter.
type MaintenanceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("GATEWARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/gatewarden.sqlite")

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.timeout", "5s")
	v.SetDefault("cache.config_ttl", "5m")

	v.SetDefault("discord.token", "")

	v.SetDefault("demo.seed", false)

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.schedule", "@hourly")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
