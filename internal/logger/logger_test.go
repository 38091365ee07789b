package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oddbyte/opm-repo/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestGetLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := getLogLevel(in); got != want {
			t.Errorf("getLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitLoggerWritesFile(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Filename = filepath.Join(t.TempDir(), "logs", "server.log")

	log, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	log.Info("hello from test")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.Log.Filename)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello from test"`) {
		t.Errorf("Expected log line in file, got %q", data)
	}
}
