package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/asakaida/rolegate/internal/infrastructure/config"
	"github.com/hashicorp/go-hclog"
)

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  hclog.Level
	}{
		{name: "debug", level: "debug", want: hclog.Debug},
		{name: "uppercase warn", level: "WARN", want: hclog.Warn},
		{name: "empty defaults to info", level: "", want: hclog.Info},
		{name: "unknown defaults to info", level: "verbose", want: hclog.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := newLogger("rolegate", config.LogConfig{Level: tt.level}, &bytes.Buffer{})
			if got := logger.GetLevel(); got != tt.want {
				t.Errorf("logger level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("rolegate", config.LogConfig{Level: "info", Format: "json"}, &buf)

	logger.Info("access decided", "allowed", true)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if line["@message"] != "access decided" {
		t.Errorf("@message = %v, want %q", line["@message"], "access decided")
	}
	if line["@module"] != "rolegate" {
		t.Errorf("@module = %v, want %q", line["@module"], "rolegate")
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("rolegate", config.LogConfig{Level: "info", Format: "text"}, &buf)

	logger.Debug("hidden")
	logger.Info("visible", "role", "admin")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "role=admin") {
		t.Errorf("unexpected text output: %q", out)
	}
}
