package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOGS_FOLDER", dir)

	if err := Init(true); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("verbose should enable debug, got %s", zerolog.GlobalLevel())
	}

	log.Info().Msg("hello")

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("expected log file: %v", err)
	}
}

func TestInit_UnwritableFolder(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOGS_FOLDER", file)

	if err := Init(false); err == nil {
		t.Error("expected an error when the log folder is a file")
	}
}
