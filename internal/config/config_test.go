package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
[check]
max_problems = 25
jobs = 2

[cache]
backend = "disk"
ttl = "90m"

[log]
level = "debug"
`)
	nested := filepath.Join(root, "site", "pages")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != filepath.Join(root, FileName) {
		t.Fatalf("path = %q", cfg.Path)
	}
	if cfg.Check.MaxProblems != 25 || cfg.Check.Jobs != 2 {
		t.Fatalf("check = %+v", cfg.Check)
	}
	if cfg.Cache.Backend != "disk" || cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Fatalf("cache = %+v", cfg.Cache)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
	// untouched sections keep their defaults
	if diff := cmp.Diff(Default().Validators, cfg.Validators); diff != "" {
		t.Fatalf("validators changed (-want +got):\n%s", diff)
	}
}

func TestDiscoverNotFound(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if cfg.Check.MaxProblems != Default().Check.MaxProblems {
		t.Fatalf("expected defaults, got %+v", cfg.Check)
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `
colour = "blue"

[check]
max_problems = 3
max_problem = 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"check.max_problem", "colour"}
	if diff := cmp.Diff(want, cfg.Unknown); diff != "" {
		t.Fatalf("unknown keys (-want +got):\n%s", diff)
	}
}

func TestLoadEmptyCommandDisablesWHATWG(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "[validators]\nwhatwg_command = []\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Validators.WHATWG {
		t.Fatalf("expected whatwg validator disabled")
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[check\n", "failed to parse TOML"},
		{"backend", "[cache]\nbackend = \"memcached\"\n", "Cache.Backend must be one of"},
		{"redis url", "[cache]\nbackend = \"redis\"\n", "Cache.RedisURL is required"},
		{"negative", "[check]\njobs = -1\n", "Check.Jobs must be >= 0"},
		{"level", "[log]\nlevel = \"loud\"\n", "Log.Level must be one of"},
		{"url", "[validators]\nw3c_url = \"not a url\"\n", "Validators.W3CURL is not a valid URL"},
		{"duration", "[services]\ntimeout = \"soon\"\n", "invalid duration"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tc.content)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
