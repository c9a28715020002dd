// cmd/elsa/config_test.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"slices"
	"testing"
	"time"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseConfigDefaults(t *testing.T) {
	c, err := parseConfig(nil, mapEnv(nil))
	if err != nil {
		t.Fatal(err)
	}
	if c.Addr != ":8080" || c.CacheSize != 256 || c.CacheTTL != 0 || c.LogLevel != "info" {
		t.Errorf("unexpected defaults %+v", c)
	}
	if !slices.Equal(c.WarmAltitudes, []float64{150, 300, 600, 900}) {
		t.Errorf("unexpected warm altitudes %v", c.WarmAltitudes)
	}
}

func TestParseConfigPrecedence(t *testing.T) {
	env := mapEnv(map[string]string{
		"ELSA_ADDR":           ":9000",
		"ELSA_REDIS_ADDR":     "redis:6379",
		"ELSA_REDIS_DB":       "3",
		"ELSA_CACHE_SIZE":     "64",
		"ELSA_CACHE_TTL":      "10m",
		"ELSA_LOG_LEVEL":      "debug",
		"ELSA_WARM_ALTITUDES": "",
	})

	c, err := parseConfig([]string{"-addr", ":9100", "-warm", "300"}, env)
	if err != nil {
		t.Fatal(err)
	}
	if c.Addr != ":9100" {
		t.Errorf("flag didn't override environment: %s", c.Addr)
	}
	if c.RedisAddr != "redis:6379" || c.RedisDB != 3 || c.CacheSize != 64 || c.CacheTTL != 10*time.Minute ||
		c.LogLevel != "debug" {
		t.Errorf("environment not applied: %+v", c)
	}
	if !slices.Equal(c.WarmAltitudes, []float64{300}) {
		t.Errorf("unexpected warm altitudes %v", c.WarmAltitudes)
	}

	c, err = parseConfig([]string{"-warm", ""}, env)
	if err != nil || len(c.WarmAltitudes) != 0 {
		t.Errorf("expected no warm altitudes, got %v, %v", c.WarmAltitudes, err)
	}
}

func TestParseConfigErrors(t *testing.T) {
	for _, tc := range []struct {
		args []string
		env  map[string]string
	}{
		{env: map[string]string{"ELSA_REDIS_DB": "zero"}},
		{env: map[string]string{"ELSA_CACHE_TTL": "forever"}},
		{args: []string{"-warm", "150,high"}},
		{args: []string{"-cachesize", "0"}},
		{args: []string{"-nosuchflag"}},
	} {
		if _, err := parseConfig(tc.args, mapEnv(tc.env)); err == nil {
			t.Errorf("%v %v: expected error", tc.args, tc.env)
		}
	}
}
