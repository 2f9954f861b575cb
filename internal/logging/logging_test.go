package logging

import "testing"

func TestNewFallsBackToInfoOnUnknownLevel(t *testing.T) {
	logger, err := New("release", "chatty")
	if err != nil {
		t.Fatalf("expected logger, got error %v", err)
	}
	defer logger.Sync()

	if logger.Core().Enabled(-1) {
		t.Fatal("expected debug level to be disabled")
	}
	if !logger.Core().Enabled(0) {
		t.Fatal("expected info level to be enabled")
	}
}

func TestNewDebugMode(t *testing.T) {
	logger, err := New("debug", "debug")
	if err != nil {
		t.Fatalf("expected logger, got error %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Fatal("expected debug level to be enabled")
	}
}
