package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultURLFilePath is relative to the XDG config home.
const DefaultURLFilePath = "financas/config.yml"

// URLFile persists the remote endpoint between runs. It is the only value
// this client ever writes to disk.
type URLFile struct {
	Path string
}

type urlFileContents struct {
	APIURL string `yaml:"api_url"`
}

// DefaultURLFile points at $XDG_CONFIG_HOME/financas/config.yml.
func DefaultURLFile() URLFile {
	return URLFile{Path: filepath.Join(xdg.ConfigHome, DefaultURLFilePath)}
}

// Load returns the stored URL. A missing file is not an error.
func (f URLFile) Load() (string, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Path, err)
	}
	var c urlFileContents
	if err := yaml.Unmarshal(b, &c); err != nil {
		return "", fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return c.APIURL, nil
}

// Save validates and stores the URL, creating the directory if needed.
func (f URLFile) Save(apiURL string) error {
	if err := ValidateAPIURL(apiURL); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	b, err := yaml.Marshal(urlFileContents{APIURL: apiURL})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(f.Path, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

// ResolveAPIURL fills c.APIURL from the URL file when the environment left
// it empty.
func (c *Config) ResolveAPIURL(f URLFile) error {
	if c.APIURL != "" {
		return nil
	}
	u, err := f.Load()
	if err != nil {
		return err
	}
	c.APIURL = u
	return nil
}
