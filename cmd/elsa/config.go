// cmd/elsa/config.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/server"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/util"
)

// Config holds the service settings. Defaults can be overridden by ELSA_*
// environment variables (possibly loaded from a .env file), which in
// turn are overridden by command-line flags.
type Config struct {
	Addr          string
	AircraftPath  string
	LocationsPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheSize     int
	CacheTTL      time.Duration

	WarmAltitudes []float64

	LogLevel string
	LogDir   string
}

type envLookup func(string) string

func (env envLookup) str(name, def string) string {
	if v := env(name); v != "" {
		return v
	}
	return def
}

func (env envLookup) integer(name string, def int, errs *[]string) int {
	v := env(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %q: not an integer", name, v))
		return def
	}
	return n
}

func (env envLookup) duration(name string, def time.Duration, errs *[]string) time.Duration {
	v := env(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %q: not a duration", name, v))
		return def
	}
	return d
}

func parseConfig(args []string, getenv func(string) string) (Config, error) {
	env := envLookup(getenv)
	var errs []string

	fs := flag.NewFlagSet("elsa", flag.ContinueOnError)
	var c Config
	fs.StringVar(&c.Addr, "addr", env.str("ELSA_ADDR", server.DefaultAddr), "address to listen on")
	fs.StringVar(&c.AircraftPath, "aircraft", env.str("ELSA_AIRCRAFT", "resources/aircraft.yml"),
		"aircraft catalog (YAML, optionally zstd compressed)")
	fs.StringVar(&c.LocationsPath, "locations", env.str("ELSA_LOCATIONS", "resources/locations.yml"),
		"landing location catalog (YAML, optionally zstd compressed)")
	fs.StringVar(&c.RedisAddr, "redis", env.str("ELSA_REDIS_ADDR", ""), "address of a redis server to share cached responses")
	fs.StringVar(&c.RedisPassword, "redis-password", env.str("ELSA_REDIS_PASSWORD", ""), "redis password")
	fs.IntVar(&c.RedisDB, "redis-db", env.integer("ELSA_REDIS_DB", 0, &errs), "redis database")
	fs.IntVar(&c.CacheSize, "cachesize", env.integer("ELSA_CACHE_SIZE", server.DefaultCacheSize, &errs),
		"number of responses kept in memory")
	fs.DurationVar(&c.CacheTTL, "cachettl", env.duration("ELSA_CACHE_TTL", 0, &errs),
		"lifetime of cached responses (0: until evicted)")
	warm := fs.String("warm", env.str("ELSA_WARM_ALTITUDES", "150,300,600,900"),
		"comma-separated altitudes (m) to precompute zones for at startup")
	fs.StringVar(&c.LogLevel, "loglevel", env.str("ELSA_LOG_LEVEL", "info"), "logging level: debug, info, warn, error")
	fs.StringVar(&c.LogDir, "logdir", env.str("ELSA_LOG_DIR", ""), "log file directory")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}

	var err error
	if c.WarmAltitudes, err = util.ParseFloatList(*warm); err != nil {
		return Config{}, fmt.Errorf("-warm: %w", err)
	}
	if c.CacheSize <= 0 {
		return Config{}, fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}

	return c, nil
}
