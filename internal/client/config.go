package client

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// Config holds the information needed to connect to a bath planner server.
type Config struct {
	Service Service `json:"service"`
}

type Service struct {
	// Server is the URL of the API server (the part before /api/v1/...).
	Server string `json:"server"`
}

// DefaultConfigPath returns the default path of the bathctl config file.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bathctl", "client.yaml")
	}
	return filepath.Join(home, ".bathctl", "client.yaml")
}

// ParseConfigFile reads a client config. A missing file yields an empty config.
func ParseConfigFile(filename string) (*Config, error) {
	config := &Config{}
	contents, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(contents, config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return config, nil
}
