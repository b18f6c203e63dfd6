package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the critpath configuration file.
const ConfigFileName = "critpath.toml"

// FindConfigFile walks up from startDir looking for critpath.toml. It returns
// the absolute path, or "" when the filesystem root is reached first.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadFromFile parses the TOML file at path. The returned metadata reports
// which keys the file defined and which it did not recognize.
func LoadFromFile(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("loading config %s: %w", path, err)
	}
	return &cfg, md, nil
}

// Load finds, reads and resolves the configuration. An explicit path must
// exist; otherwise critpath.toml is searched for upwards from startDir and
// its absence is not an error. The metadata is nil when no file was read.
func Load(path, startDir string, envFn EnvFunc, overrides *CLIOverrides) (*ResolvedConfig, *toml.MetaData, error) {
	if path == "" {
		found, err := FindConfigFile(startDir)
		if err != nil {
			return nil, nil, fmt.Errorf("finding config file: %w", err)
		}
		path = found
	}

	var (
		fileCfg *Config
		meta    *toml.MetaData
	)
	if path != "" {
		fc, md, err := LoadFromFile(path)
		if err != nil {
			return nil, nil, err
		}
		fileCfg, meta = fc, &md
	}

	rc, err := Resolve(NewDefaults(), fileCfg, meta, envFn, overrides)
	if err != nil {
		return nil, nil, err
	}
	rc.Path = path
	return rc, meta, nil
}
