package logger

import (
	"testing"

	"github.com/Adda-Baaj/maytapi-sender/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestObjHelpersWriteStructuredField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := S
	S = zap.New(core).Sugar()
	defer func() { S = prev }()

	InfoObj("sent", "delivery", map[string]any{"to": "123"})
	ErrorObj("failed", "error", "boom")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "sent" || entries[0].ContextMap()["delivery"] == nil {
		t.Fatalf("unexpected first entry: %#v", entries[0])
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("second entry level = %v", entries[1].Level)
	}
}

func TestHelpersNoopBeforeInit(t *testing.T) {
	prev := S
	S = nil
	defer func() { S = prev }()

	InfoObj("ignored", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close without init: %v", err)
	}
}

func TestInitReturnsUsableLogger(t *testing.T) {
	prev := S
	defer func() { S = prev }()

	log, err := Init(&config.Config{AppName: "test", LogLevel: "error"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if S == nil {
		t.Fatalf("package logger not set")
	}
	log.DebugObj("below level", "k", 1)
	var _ Logger = &NopLogger{}
}
