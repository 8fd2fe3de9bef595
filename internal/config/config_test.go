package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"json", "c.json", `{"root":"/srv","port":9000,"global":false,"scoring":{"fileBonus":0.4}}`},
		{"toml", "c.toml", "root = \"/srv\"\nport = 9000\nglobal = false\n[scoring]\nfileBonus = 0.4\n"},
		{"yaml", "c.yaml", "root: /srv\nport: 9000\nglobal: false\nscoring:\n  fileBonus: 0.4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.body))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Root != "/srv" || cfg.Port != 9000 || cfg.Global {
				t.Errorf("unexpected config %+v", cfg)
			}
			if cfg.Scoring.FileBonus != 0.4 {
				t.Errorf("FileBonus = %f, want 0.4", cfg.Scoring.FileBonus)
			}
			// untouched weights keep their defaults
			if cfg.Scoring.ExactBonus != 0.5 || cfg.Scoring.Fuzzy != 0.5 {
				t.Errorf("defaults lost: %+v", cfg.Scoring)
			}
			if cfg.UploadPrefix != "fuzzy_post_data_" {
				t.Errorf("UploadPrefix = %q", cfg.UploadPrefix)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	for _, f := range []struct{ file, body string }{
		{"c.json", `{"bogus":1}`},
		{"c.toml", "bogus = 1\n"},
		{"c.yml", "bogus: 1\n"},
	} {
		if _, err := Load(writeFile(t, f.file, f.body)); err == nil {
			t.Errorf("%s: expected error for unknown key", f.file)
		}
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	if _, err := Load(writeFile(t, "c.ini", "root=/")); err == nil {
		t.Fatal("expected error for .ini")
	}
}

func TestNormalize(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Root = dir
	cfg.UploadPrefix = ""
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !filepath.IsAbs(cfg.Root) {
		t.Errorf("Root not absolute: %q", cfg.Root)
	}
	if cfg.UploadPrefix == "" {
		t.Error("UploadPrefix should fall back to the default")
	}

	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	for _, root := range []string{"", file, filepath.Join(dir, "missing")} {
		c := Default()
		c.Root = root
		if err := c.Normalize(); err == nil {
			t.Errorf("Normalize(root=%q) should fail", root)
		}
	}
}

func TestListenAddr(t *testing.T) {
	c := Default()
	if got := c.ListenAddr(); got != ":8000" {
		t.Errorf("ListenAddr = %q, want :8000", got)
	}
}
