package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if Logger.GetLevel().String() != "debug" {
		t.Errorf("level = %v, want debug", Logger.GetLevel())
	}

	Debug("Test debug message", "key", "value")
}

func TestInitWithInvalidDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Init(Config{ConfigDir: file}); err == nil {
		t.Error("expected error when config dir is a regular file")
	}
}

func TestLoggingWithoutInit(t *testing.T) {
	Logger = nil

	Debug("no-op")
	Info("no-op")
	Warn("no-op")
	Error("no-op")

	l := For("component")
	if l == nil {
		t.Fatal("For() returned nil before Init")
	}
	l.Info("discarded")
}
