// cmd/elsa/main.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// elsa serves landing location data and emergency landing reachability
// zones over HTTP.

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/log"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/server"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/zones"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env: %v\n", err)
		os.Exit(1)
	}

	config, err := parseConfig(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Initialize the logging system first and foremost.
	lg := log.New(true, config.LogLevel, config.LogDir)
	defer lg.CatchAndReportCrash()

	if err := run(config, lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(config Config, lg *log.Logger) error {
	catalog, err := aviation.LoadCatalogFiles(config.AircraftPath, config.LocationsPath, lg)
	if err != nil {
		return err
	}

	engine, err := zones.NewEngine(nil, zones.DefaultConfig(), lg)
	if err != nil {
		return err
	}

	redisClient := server.OpenRedis(config.RedisAddr, config.RedisPassword, config.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(server.Config{
		Addr:      config.Addr,
		CacheSize: config.CacheSize,
		CacheTTL:  config.CacheTTL,
		Redis:     redisClient,
	}, catalog, engine, lg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(config.WarmAltitudes) > 0 {
		go func() {
			if err := srv.Warm(ctx, config.WarmAltitudes); err != nil && !errors.Is(err, context.Canceled) {
				lg.Warnf("warming cache: %v", err)
			}
		}()
	}

	return srv.ListenAndServe(ctx)
}
