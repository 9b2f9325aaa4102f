package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facet.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadNoPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Resolution != Default().Resolution {
		t.Errorf("Resolution = %g, want default %g", cfg.Resolution, Default().Resolution)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeFile(t, `
bounds:
  min: [-1, -1, 0]
  max: [1, 1, 4]
resolution: 16
power_of_two: true
eval_timeout: 250ms
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Bounds.Min != [3]float64{-1, -1, 0} || cfg.Bounds.Max != [3]float64{1, 1, 4} {
		t.Errorf("Bounds = %+v", cfg.Bounds)
	}
	if cfg.Resolution != 16 || !cfg.PowerOfTwo {
		t.Errorf("Resolution = %g, PowerOfTwo = %t", cfg.Resolution, cfg.PowerOfTwo)
	}
	if cfg.EvalTimeout != 250*time.Millisecond {
		t.Errorf("EvalTimeout = %s, want 250ms", cfg.EvalTimeout)
	}
	// Unset fields keep their defaults.
	if cfg.MeshCells != Default().MeshCells {
		t.Errorf("MeshCells = %d, want default %d", cfg.MeshCells, Default().MeshCells)
	}
	if lvl, _ := cfg.SlogLevel(); lvl != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", lvl)
	}

	r := cfg.Region()
	if r.X.Len() != 32 || r.Z.Len() != 64 {
		t.Errorf("region axes = %d, %d, want 32, 64", r.X.Len(), r.Z.Len())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FACET_WORKERS", "3")
	t.Setenv("FACET_RESOLUTION", "2.5")
	t.Setenv("FACET_LOG_LEVEL", "warn")

	cfg, err := Load(writeFile(t, "workers: 1\n"))
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Workers != 3 || cfg.Resolution != 2.5 || cfg.LogLevel != "warn" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "resolution: [", "parse"},
		{"bad resolution", "resolution: 0", "resolution must be positive"},
		{"inverted bounds", "bounds: {min: [1, 0, 0], max: [0, 1, 1]}", "x min 1 exceeds max 0"},
		{"negative workers", "workers: -2", "workers must not be negative"},
		{"bad level", "log_level: loud", "unknown level"},
		{"bad timeout", "eval_timeout: 0s", "eval_timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("FACET_WORKERS", "many")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "FACET_WORKERS") {
		t.Fatalf("err = %v, want FACET_WORKERS error", err)
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Resolution = -1
	cfg.MeshCells = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"resolution", "mesh_cells"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %s", err, want)
		}
	}
}
