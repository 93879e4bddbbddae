package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	host, port := cfg.Host, cfg.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port == 0 {
		port = 3306
	}

	credentials := cfg.User
	if cfg.Password != "" {
		credentials += ":" + cfg.Password
	}

	// parseTime makes the driver scan DATETIME columns into time.Time.
	options := map[string]string{
		"charset":   "utf8mb4",
		"parseTime": "True",
		"loc":       "Local",
	}
	for key, value := range cfg.Options {
		options[key] = value
	}

	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+options[key])
	}

	return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s", credentials, host, port, cfg.Name, strings.Join(pairs, "&")), nil
}
