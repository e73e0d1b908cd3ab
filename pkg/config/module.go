package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

// EnvPrefix starts every environment variable that overrides a setting.
const EnvPrefix = "ARBITER_"

// decode merges a YAML (or JSON) document into config. Fields the document
// does not mention keep their current value; lists are replaced.
func decode(data []byte, config *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(config)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func readFile(path string, config *Config) error {
	// Check if this is a valid file
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("does not exist")
	}

	switch filepath.Ext(path) {
	case ".json", ".yaml", ".yml":
	default:
		return fmt.Errorf("not in a valid format")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return decode(data, config)
}

// Process starts from the default configuration and merges the provided
// configuration files on top of it, in order. Environment overrides are
// applied last.
func Process(configPaths []string) (*Config, error) {
	config := Config{}
	if err := decode(DEFAULT, &config); err != nil {
		return nil, fmt.Errorf("invalid default config file: %w", err)
	}

	for _, path := range configPaths {
		if err := readFile(path, &config); err != nil {
			return nil, fmt.Errorf(
				"could not process config file %s: %w",
				path,
				err,
			)
		}
	}

	if err := applyEnv(&config, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadEnv reads .env style files into the process environment. Variables
// that are already set win. Missing files are skipped.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("could not load env file %s: %w", path, err)
		}
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(config *Config, lookup lookupFunc) error {
	server := &config.Server

	strings := map[string]*string{
		"REDIS_ADDRESS":  &server.Redis.Address,
		"REDIS_PASSWORD": &server.Redis.Password,
		"REDIS_PREFIX":   &server.Redis.Prefix,
		"DB_PATH":        &server.Store.DBPath,
		"LEVEL":          &server.Game.Level,
		"MODE":           &server.Game.Match.Mode,
	}
	for key, target := range strings {
		if value, ok := lookup(EnvPrefix + key); ok {
			*target = value
		}
	}

	ints := map[string]*int{
		"WEB_PORT": &server.Ingress.Web.Port,
		"REDIS_DB": &server.Redis.DB,
	}
	for key, target := range ints {
		value, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s%s must be a number: %w", EnvPrefix, key, err)
		}
		*target = parsed
	}

	if value, ok := lookup(EnvPrefix + "REDIS_ENABLED"); ok {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%sREDIS_ENABLED must be a boolean: %w", EnvPrefix, err)
		}
		server.Redis.Enabled = enabled
	}

	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	game := &c.Server.Game
	if err := game.Match.Validate(); err != nil {
		return err
	}

	if _, err := game.SpawnPoints(game.Level); err != nil {
		return fmt.Errorf("starting level: %w", err)
	}

	for _, level := range game.Match.Rotation {
		if _, err := game.SpawnPoints(level); err != nil {
			return fmt.Errorf("rotation: %w", err)
		}
	}

	if game.Match.Lobby {
		if _, err := game.SpawnPoints(game.Match.Hub); err != nil {
			return fmt.Errorf("hub: %w", err)
		}
	}

	if port := c.Server.Ingress.Web.Port; port < 0 || port > 65535 {
		return fmt.Errorf("invalid web port %d", port)
	}

	return nil
}
