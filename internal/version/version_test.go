package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersionDefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if UserAgent() != "ably/"+Version {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}

func TestVersionCanBeOverridden(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "1.2.3"
	GitCommit = "abc123def456"
	if Version != "1.2.3" || GitCommit != "abc123def456" {
		t.Errorf("override failed: %q %q", Version, GitCommit)
	}
}

func TestColoredKeepsText(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	orig := Version
	defer func() { Version = orig }()

	for _, v := range []string{"0.1.0-dev", "2.0.1", "nightly"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}
