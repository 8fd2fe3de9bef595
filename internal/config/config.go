package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"fuzzyhttp/internal/score"
	"fuzzyhttp/internal/upload"
)

// Config is intentionally small. It can be written as JSON, TOML or YAML;
// fields left out keep their defaults.
type Config struct {
	// Root is the directory being served. Default: current directory.
	Root string `json:"root" toml:"root" yaml:"root"`

	// Addr is the host part of the listen address ("" means all interfaces).
	Addr string `json:"addr" toml:"addr" yaml:"addr"`
	Port int    `json:"port" toml:"port" yaml:"port"`

	// Global enables recursive, path-aware matching across the whole tree.
	// When false only the requested directory is considered.
	Global bool `json:"global" toml:"global" yaml:"global"`

	// DirPreference, when set, favours paths containing this substring in
	// recursive matching and penalises the others.
	DirPreference string `json:"dirPreference,omitempty" toml:"dirPreference" yaml:"dirPreference,omitempty"`

	// MaxConns caps concurrently served connections. 0 means unlimited.
	MaxConns int `json:"maxConns,omitempty" toml:"maxConns" yaml:"maxConns,omitempty"`

	// UploadPrefix is prepended to the names of POSTed files.
	UploadPrefix string `json:"uploadPrefix" toml:"uploadPrefix" yaml:"uploadPrefix"`

	Scoring score.Weights `json:"scoring" toml:"scoring" yaml:"scoring"`
}

func Default() Config {
	return Config{
		Root:         ".",
		Port:         8000,
		Global:       true,
		UploadPrefix: upload.DefaultPrefix,
		Scoring:      score.DefaultWeights(),
	}
}

// Load reads a config file over the defaults. The format follows the file
// extension: .json, .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".toml":
		var md toml.MetaData
		md, err = toml.Decode(string(b), &cfg)
		if err == nil {
			if undec := md.Undecoded(); len(undec) > 0 {
				err = fmt.Errorf("unknown keys: %v", undec)
			}
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Normalize makes Root absolute and checks that it is a directory.
func (c *Config) Normalize() error {
	if strings.TrimSpace(c.Root) == "" {
		return errors.New("config: root is required")
	}
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("abs root: %w", err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("root: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("root %s is not a directory", abs)
	}
	c.Root = abs
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("invalid maxConns %d", c.MaxConns)
	}
	if c.UploadPrefix == "" {
		c.UploadPrefix = upload.DefaultPrefix
	}
	return nil
}

// ListenAddr is the address passed to net.Listen.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Addr, c.Port)
}
