package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
[log]
default_level = "EVENT"

[[log.facility]]
name = "FILE"
destination = "/var/log/test.log"
max_level = "FULL_DEBUG"
headers = "all"
enable = "default"

[[log.facility]]
name = "STDOUT"
destination = "stdout"
headers = "component"
enable = "active"

[log.format]
date_format = "8601"
time_format = "8601"
file_name = true
line_num = true

[log.components]
ALL = "EVENT"
NFSPROTO = "DEBUG"
COMPONENT_FSAL = "F_DBG"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Log.DefaultLevel != "EVENT" {
		t.Errorf("default_level = %q", cfg.Log.DefaultLevel)
	}
	if len(cfg.Log.Facilities) != 2 {
		t.Fatalf("facilities = %d, want 2", len(cfg.Log.Facilities))
	}
	f := cfg.Log.Facilities[0]
	if f.Name != "FILE" || f.Destination != "/var/log/test.log" ||
		f.MaxLevel != "FULL_DEBUG" || f.Headers != "all" || f.Enable != "default" {
		t.Errorf("first facility = %+v", f)
	}
	if cfg.Log.Format == nil || !cfg.Log.Format.FileName || !cfg.Log.Format.LineNum {
		t.Errorf("format block = %+v", cfg.Log.Format)
	}
	if cfg.Log.Components["NFSPROTO"] != "DEBUG" {
		t.Errorf("components = %v", cfg.Log.Components)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}
	if _, err := Load(writeConfig(t, "[log\nbroken")); err == nil {
		t.Error("malformed TOML accepted")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("valid config reported %v", errs)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"bad default level", "[log]\ndefault_level = \"VERBOSE\"\n"},
		{"empty facility name", "[[log.facility]]\ndestination = \"stdout\"\n"},
		{"bad facility level", "[[log.facility]]\nname = \"X\"\nmax_level = \"LOUD\"\n"},
		{"bad headers", "[[log.facility]]\nname = \"X\"\nheaders = \"some\"\n"},
		{"bad state", "[[log.facility]]\nname = \"X\"\nenable = \"maybe\"\n"},
		{"bad date format", "[log.format]\ndate_format = \"rfc822\"\n"},
		{"user mode without pattern", "[log.format]\ndate_format = \"user_defined\"\n"},
		{"unknown component", "[log.components]\nCOMPONENT_BOGUS = \"EVENT\"\n"},
		{"bad component level", "[log.components]\nFSAL = \"LOUD\"\n"},
	}
	for _, tt := range tests {
		cfg, err := Load(writeConfig(t, tt.config))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if errs := cfg.Validate(); len(errs) == 0 {
			t.Errorf("%s: validation passed", tt.name)
		}
	}
}
