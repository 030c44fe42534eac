package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With(Component("auth"))

	log.Info("consent granted", String("client_id", "abc"))
	log.Warnf("retry %d", 2)
	log.Error("consent failed", Error(errors.New("boom")))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for _, e := range entries {
		if got := e.ContextMap()["component"]; got != "auth" {
			t.Errorf("%q: component = %v, want auth", e.Message, got)
		}
	}
	if got := entries[0].ContextMap()["client_id"]; got != "abc" {
		t.Errorf("client_id = %v", got)
	}
	if entries[1].Message != "retry 2" || entries[1].Level != zapcore.WarnLevel {
		t.Errorf("sugared entry = %+v", entries[1].Entry)
	}
	if got := entries[2].ContextMap()["error"]; got != "boom" {
		t.Errorf("error field = %v", got)
	}
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level   string
		pretty  bool
		debugOn bool
	}{
		{"debug", false, true},
		{"info", false, false},
		{"", true, true}, // development preset defaults to debug
		{"nonsense", false, false},
	}
	for _, tt := range tests {
		l := New(tt.level, tt.pretty).(*loggerImpl)
		if got := l.base.Core().Enabled(zapcore.DebugLevel); got != tt.debugOn {
			t.Errorf("New(%q, %v): debug enabled = %v, want %v", tt.level, tt.pretty, got, tt.debugOn)
		}
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("ignored")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() = %v", err)
	}
}
