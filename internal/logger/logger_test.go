package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bakehouse-pos/api/internal/config"
	"github.com/sirupsen/logrus"
)

func TestNew_LevelAndFormat(t *testing.T) {
	log := New(config.LogConfig{Level: "debug", Format: "json"})
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want JSON", log.Formatter)
	}

	log = New(config.LogConfig{Level: "loud"})
	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("unknown level must fall back to info, got %v", log.GetLevel())
	}
}

func TestNew_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "api.log")
	log := New(config.LogConfig{Level: "info", File: file, MaxSizeMB: 1})
	log.WithField("location", "SILOM").Info("order saved")

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "order saved") || !strings.Contains(string(b), "location=SILOM") {
		t.Errorf("log file = %q", b)
	}
}
