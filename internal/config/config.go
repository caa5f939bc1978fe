package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// DefaultFile is read when no --config flag is given.
const DefaultFile = "schemr.config.json"

var ErrEnvironmentNotFound = errors.New("environment not found")

// Environment is one configured database target. The password itself never
// lives in the file, only the name of the variable holding it.
type Environment struct {
	Driver      string `json:"driver"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	PasswordEnv string `json:"passwordEnv"`
	Database    string `json:"database"`
	// Path is the database file for the sqlite driver.
	Path string `json:"path,omitempty"`
	// Params are appended to the driver DSN, e.g. sslmode for postgres.
	Params map[string]string `json:"params,omitempty"`
}

type Config struct {
	Environments map[string]Environment `json:"environments"`

	path string
}

// ConnectionParameters is a resolved environment, ready to connect with.
type ConnectionParameters struct {
	Name     string
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Path     string
	Params   map[string]string
}

var defaultPorts = map[string]int{
	"mysql":     3306,
	"postgres":  5432,
	"sqlserver": 1433,
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

func Parse(path string, data []byte) (*Config, error) {
	cfg := &Config{path: path}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Environments == nil {
		cfg.Environments = map[string]Environment{}
	}
	return cfg, nil
}

// Names returns the configured environment names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveEnvironment looks up name and reads its password from the process
// environment.
func (c *Config) ResolveEnvironment(name string) (ConnectionParameters, error) {
	env, ok := c.Environments[name]
	if !ok {
		return ConnectionParameters{}, fmt.Errorf("environment '%s' not found in %s: %w", name, c.path, ErrEnvironmentNotFound)
	}

	driver := env.Driver
	if driver == "" {
		driver = "mysql"
	}

	params := ConnectionParameters{
		Name:     name,
		Driver:   driver,
		Host:     env.Host,
		Port:     env.Port,
		User:     env.Username,
		Database: env.Database,
		Path:     env.Path,
		Params:   env.Params,
	}
	if params.Host == "" && driver != "sqlite" {
		params.Host = "localhost"
	}
	if params.Port == 0 {
		params.Port = defaultPorts[driver]
	}

	if env.PasswordEnv != "" {
		pwd, ok := os.LookupEnv(env.PasswordEnv)
		if !ok {
			return ConnectionParameters{}, fmt.Errorf("env var '%s' not set for environment '%s'", env.PasswordEnv, name)
		}
		params.Password = pwd
	}

	return params, nil
}
