package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/choiway/filmtag/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "filmtag", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.ExifTool.Binary != "exiftool" {
		t.Fatalf("unexpected binary default %q", cfg.ExifTool.Binary)
	}
	if cfg.Images.Extension != "jpg" {
		t.Fatalf("unexpected extension default %q", cfg.Images.Extension)
	}
	if cfg.Images.Pattern != "frame_{frame_number:02d}" {
		t.Fatalf("unexpected pattern default %q", cfg.Images.Pattern)
	}
	if cfg.Images.InPlace {
		t.Fatal("expected sidecar mode by default")
	}
	if cfg.Ledger.DSN != "" {
		t.Fatalf("expected ledger disabled by default, got %q", cfg.Ledger.DSN)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `
[exiftool]
binary = "/opt/exiftool/exiftool"
config_path = "~/filmtag/exiftool_config"

[images]
extension = ".TIF"
pattern = "scan_%03d"
inplace = true

[logging]
format = "JSON"
level = "debug"

[ledger]
dsn = "~/filmtag/ledger.db"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.ExifTool.Binary != "/opt/exiftool/exiftool" {
		t.Fatalf("unexpected binary %q", cfg.ExifTool.Binary)
	}
	if want := filepath.Join(home, "filmtag", "exiftool_config"); cfg.ExifTool.ConfigPath != want {
		t.Fatalf("expected expanded config path %q, got %q", want, cfg.ExifTool.ConfigPath)
	}
	if cfg.Images.Extension != "TIF" || cfg.Images.Pattern != "scan_%03d" || !cfg.Images.InPlace {
		t.Fatalf("unexpected images section: %+v", cfg.Images)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section: %+v", cfg.Logging)
	}
	if want := filepath.Join(home, "filmtag", "ledger.db"); cfg.Ledger.DSN != want {
		t.Fatalf("expected expanded ledger path %q, got %q", want, cfg.Ledger.DSN)
	}
}

func TestLoadKeepsPostgresDSN(t *testing.T) {
	dsn := "postgres://filmtag@localhost:5432/filmtag"
	path := writeConfig(t, "[ledger]\ndsn = \""+dsn+"\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Ledger.DSN != dsn {
		t.Fatalf("expected DSN untouched, got %q", cfg.Ledger.DSN)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"pattern":   "[images]\npattern = \"frame\"\n",
		"format":    "[logging]\nformat = \"xml\"\n",
		"level":     "[logging]\nlevel = \"loud\"\n",
		"unknown":   "[images]\ncolour = \"red\"\n",
		"malformed": "[images\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, _, err := config.Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var parsed config.Config
	if err := toml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := config.Default()
	if parsed.Images != def.Images {
		t.Fatalf("sample images section %+v differs from defaults %+v", parsed.Images, def.Images)
	}
	if parsed.Logging != def.Logging {
		t.Fatalf("sample logging section %+v differs from defaults %+v", parsed.Logging, def.Logging)
	}
	if !strings.Contains(string(data), "[ledger]") {
		t.Fatal("expected sample to document the ledger section")
	}
}
