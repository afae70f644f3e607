package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    slog.Level
		wantErr bool
	}{
		{name: "default info", raw: "", want: slog.LevelInfo},
		{name: "debug", raw: "debug", want: slog.LevelDebug},
		{name: "info", raw: "info", want: slog.LevelInfo},
		{name: "warn", raw: "warn", want: slog.LevelWarn},
		{name: "warning alias", raw: "warning", want: slog.LevelWarn},
		{name: "error", raw: "error", want: slog.LevelError},
		{name: "numeric", raw: "-4", want: slog.LevelDebug},
		{name: "invalid", raw: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLogLevel(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse level: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSelectedLogLevel(t *testing.T) {
	raw, source := selectedLogLevel("debug", "error", "warn")
	if raw != "debug" || source != "flag" {
		t.Fatalf("expected flag precedence, got raw=%q source=%q", raw, source)
	}

	raw, source = selectedLogLevel("", "warn", "info")
	if raw != "warn" || source != "env" {
		t.Fatalf("expected env fallback, got raw=%q source=%q", raw, source)
	}

	raw, source = selectedLogLevel("", "", "error")
	if raw != "error" || source != "config" {
		t.Fatalf("expected config fallback, got raw=%q source=%q", raw, source)
	}

	raw, source = selectedLogLevel("", "", "")
	if raw != "" || source != "default" {
		t.Fatalf("expected default fallback, got raw=%q source=%q", raw, source)
	}
}

func TestConfigureLoggerForCLI(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	t.Run("flag overrides invalid env", func(t *testing.T) {
		t.Setenv(logLevelEnvKey, "invalid")
		warning, err := configureLoggerForCLI("debug", "info", "")
		if err != nil {
			t.Fatalf("configure logger: %v", err)
		}
		if warning != "" {
			t.Fatalf("expected no warning, got %q", warning)
		}
	})

	t.Run("invalid flag returns error", func(t *testing.T) {
		t.Setenv(logLevelEnvKey, "")
		warning, err := configureLoggerForCLI("verbose", "info", "")
		if err == nil {
			t.Fatal("expected error")
		}
		if warning != "" {
			t.Fatalf("expected empty warning, got %q", warning)
		}
	})

	t.Run("invalid env returns warning and fallback", func(t *testing.T) {
		t.Setenv(logLevelEnvKey, "verbose")
		warning, err := configureLoggerForCLI("", "info", "")
		if err != nil {
			t.Fatalf("configure logger: %v", err)
		}
		if !strings.Contains(warning, "defaulting to info") {
			t.Fatalf("expected fallback warning, got %q", warning)
		}
	})

	t.Run("invalid config returns warning and fallback", func(t *testing.T) {
		t.Setenv(logLevelEnvKey, "")
		warning, err := configureLoggerForCLI("", "verbose", "")
		if err != nil {
			t.Fatalf("configure logger: %v", err)
		}
		if !strings.Contains(warning, "invalid log_level") {
			t.Fatalf("expected config warning, got %q", warning)
		}
	})

	t.Run("log file receives records", func(t *testing.T) {
		t.Setenv(logLevelEnvKey, "")
		path := filepath.Join(t.TempDir(), "sheetdash.log")
		if _, err := configureLoggerForCLI("info", "", path); err != nil {
			t.Fatalf("configure logger: %v", err)
		}
		slog.Info("cache refreshed", "rows", 4)

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		if !strings.Contains(string(data), "cache refreshed") {
			t.Fatalf("expected record in log file, got %q", data)
		}
	})
}

func TestNewLogHandlerFormats(t *testing.T) {
	var jsonBuf bytes.Buffer
	slog.New(newLogHandler(&jsonBuf, slog.LevelInfo, false)).Info("refresh", "rows", 3)
	var record map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", jsonBuf.String(), err)
	}
	if record["msg"] != "refresh" || record["rows"] != 3.0 {
		t.Fatalf("unexpected record: %v", record)
	}

	var textBuf bytes.Buffer
	logger := slog.New(newLogHandler(&textBuf, slog.LevelWarn, true))
	logger.Info("hidden")
	logger.Warn("shown", "rows", 3)
	out := textBuf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown rows=3") {
		t.Fatalf("unexpected text output: %q", out)
	}
}
