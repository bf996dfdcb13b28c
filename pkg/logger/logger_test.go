package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewSplitsByLevel(t *testing.T) {
	var infos, errs bytes.Buffer
	log := New(0, "2006-01-02", zapcore.AddSync(&infos), zapcore.AddSync(&errs))

	log.Debug("hidden")
	log.Info("hello")
	log.Warn("careful")
	log.Error("broken")

	infoLines := strings.Split(strings.TrimSpace(infos.String()), "\n")
	if len(infoLines) != 2 {
		t.Fatalf("Got %d info lines, expected 2: %q", len(infoLines), infos.String())
	}
	if !strings.Contains(errs.String(), "broken") || strings.Contains(errs.String(), "hello") {
		t.Errorf("Unexpected error output %q", errs.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(infoLines[0]), &entry); err != nil {
		t.Fatalf("Info line is not JSON: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, expected hello", entry["msg"])
	}
	if ts, _ := entry["ts"].(string); len(ts) != len("2006-01-02") {
		t.Errorf("ts = %v, expected custom format", entry["ts"])
	}
}

func TestDefaultLogIsUsable(t *testing.T) {
	if Log == nil {
		t.Fatal("Log is nil before Init")
	}
	Log.Info("nobody hears this")
}
