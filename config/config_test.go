/*
 * Copyright (c) Joseph Prichard 2025
 */

package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Fatalf("Expected the default port 8080 but got %s", cfg.Server.Port)
	}
	if cfg.Game.CleanupPeriod != time.Minute {
		t.Fatalf("Expected a one minute cleanup period but got %s", cfg.Game.CleanupPeriod)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("Expected the default address but got %s", cfg.Addr())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ROOM_CLEANUP_SECONDS", "120")
	t.Setenv("LOG_FORMAT", "json")

	cfg := Load()

	if cfg.Server.Port != "9000" {
		t.Fatalf("Expected the port override but got %s", cfg.Server.Port)
	}
	if cfg.Game.CleanupPeriod != 2*time.Minute {
		t.Fatalf("Expected the cleanup override but got %s", cfg.Game.CleanupPeriod)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("Expected the log format override but got %s", cfg.Logging.Format)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("ROOM_CLEANUP_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.Game.CleanupPeriod != time.Minute {
		t.Fatalf("Expected the default cleanup period for a bad value but got %s", cfg.Game.CleanupPeriod)
	}
}
