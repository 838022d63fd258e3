package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lostfound/backend/pkg/config"
)

func TestInitLogger(t *testing.T) {
	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	cfg := &config.LoggingConfig{Level: "DEBUG", Format: "json"}
	if err := InitLogger(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if !Logger.Core().Enabled(zap.DebugLevel) {
		t.Error("Expected debug level to be enabled")
	}

	cfg = &config.LoggingConfig{Level: "not-a-level", Format: "text"}
	if err := InitLogger(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if Logger.Core().Enabled(zap.DebugLevel) {
		t.Error("Unknown level should fall back to info")
	}
}

func TestWithComponent(t *testing.T) {
	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	core, logs := observer.New(zap.InfoLevel)
	Logger = zap.New(core)

	WithComponent("db").Info("test message", zap.String("key", "value"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got: %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "db" {
		t.Errorf("Expected component 'db', got: %v", fields["component"])
	}
	if fields["key"] != "value" {
		t.Errorf("Expected field 'key'='value', got: %v", fields["key"])
	}
}
