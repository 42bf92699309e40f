package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bluetuith-org/bluetooth-classic/api/bluetooth"
	"github.com/knadh/koanf/parsers/hjson"
	"github.com/knadh/koanf/providers/cliflagv2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v2"
)

const (
	configDirName = "bluescan"
	configFile    = "bluescan.conf"
)

// Config describes the configuration for the app.
type Config struct {
	path string

	Values Values
}

// NewConfig returns a new configuration.
func NewConfig() *Config {
	return &Config{}
}

// Load loads the configuration file, then the command-line flags over it.
func (c *Config) Load(k *koanf.Koanf, cliCtx *cli.Context) error {
	if err := c.loadFile(k); err != nil {
		return err
	}

	if err := k.Load(cliflagv2.Provider(cliCtx, "."), nil); err != nil {
		return err
	}

	return c.unmarshal(k)
}

// ValidateValues validates the configuration values.
func (c *Config) ValidateValues() error {
	return c.Values.validateValues()
}

// ValidateSessionValues validates all configuration values that require a bluetooth session.
func (c *Config) ValidateSessionValues(session bluetooth.Session) error {
	return c.Values.validateAdapter(session)
}

// Dir returns the configuration directory.
func (c *Config) Dir() string {
	return c.path
}

// FilePath returns the path of the named file within the configuration
// directory, creating an empty file if it does not exist.
func (c *Config) FilePath(name string) (string, error) {
	path := filepath.Join(c.path, name)

	fd, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("cannot create %s: %w", path, err)
	}

	return path, fd.Close()
}

// GenerateAndSave writes the loaded configuration to the configuration file,
// replacing its contents.
func (c *Config) GenerateAndSave(k *koanf.Koanf) error {
	data, err := hjson.Parser().Marshal(k.All())
	if err != nil {
		return err
	}

	path, err := c.FilePath(configFile)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// loadFile loads the configuration file into k.
func (c *Config) loadFile(k *koanf.Koanf) error {
	if err := c.findDir(); err != nil {
		return err
	}

	path, err := c.FilePath(configFile)
	if err != nil {
		return err
	}

	return k.Load(file.Provider(path), hjson.Parser())
}

// unmarshal stores the loaded configuration into the values.
func (c *Config) unmarshal(k *koanf.Koanf) error {
	return k.UnmarshalWithConf("", &c.Values, koanf.UnmarshalConf{Tag: "koanf"})
}

// findDir selects the first existing configuration directory, in order of
// preference: $XDG_CONFIG_HOME/bluescan, ~/.config/bluescan and ~/.bluescan.
// If none exist, the first one which can be created is used.
func (c *Config) findDir() error {
	candidates, err := configDirs()
	if err != nil {
		return err
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			c.path = dir
			return nil
		}
	}

	var errs []error

	for _, dir := range candidates {
		err := os.Mkdir(dir, 0o700)
		if err == nil {
			c.path = dir
			return nil
		}

		errs = append(errs, err)
	}

	return fmt.Errorf("cannot create a configuration directory: %w", errors.Join(errs...))
}

// configDirs returns the candidate configuration directories.
func configDirs() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	var dirs []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, configDirName))
	}

	return append(dirs,
		filepath.Join(home, ".config", configDirName),
		filepath.Join(home, "."+configDirName),
	), nil
}
