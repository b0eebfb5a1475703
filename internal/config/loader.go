package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default site-config file name.
const DefaultConfigFile = ".webrecon"

// ErrConfigNotFound is returned when the site-config file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads per-site configuration from a YAML file.
// Callers decide whether ErrConfigNotFound is fatal: it is when the user
// named the file explicitly, and silently ignored otherwise.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}
	return &cf, nil
}

// FindConfigFile locates the site-config file:
// an explicit path wins, then .webrecon in the current directory,
// then .webrecon in the user's home directory.
// Returns the empty string when no file is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
