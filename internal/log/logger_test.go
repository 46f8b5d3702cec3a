// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestConfigure_AttachesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "test-svc", Version: "v0.0.1"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("session")
	l.Debug().Str(FieldEvent, "test.event").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	if entry[FieldService] != "test-svc" {
		t.Errorf("service = %v", entry[FieldService])
	}
	if entry[FieldVersion] != "v0.0.1" {
		t.Errorf("version = %v", entry[FieldVersion])
	}
	if entry[FieldComponent] != "session" {
		t.Errorf("component = %v", entry[FieldComponent])
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("global level = %v, want debug", zerolog.GlobalLevel())
	}
}

func TestDerive_NilBuilder(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Derive(nil)
	l.Info().Msg("x")
	if buf.Len() == 0 {
		t.Fatal("expected output from derived logger")
	}
}
