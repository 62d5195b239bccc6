package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FileReader defines the interface for reading files
type FileReader interface {
	// ReadFile reads the file at the given path and returns the contents
	ReadFile(path string) ([]byte, error)
}

// DefaultFileReader implements FileReader using os.ReadFile
type DefaultFileReader struct{}

func (d *DefaultFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// HubConfigLoader wraps a FileReader to provide dependency injection for config loading functions
type HubConfigLoader struct {
	fileReader FileReader
}

// NewHubConfigLoader creates a new HubConfigLoader with the given FileReader
func NewHubConfigLoader(fileReader FileReader) *HubConfigLoader {
	return &HubConfigLoader{fileReader: fileReader}
}

// NewDefaultHubConfigLoader creates a HubConfigLoader with the default file reader
func NewDefaultHubConfigLoader() *HubConfigLoader {
	return NewHubConfigLoader(&DefaultFileReader{})
}

// LoadHubConfig loads and validates the hub config from the given path
func (cl *HubConfigLoader) LoadHubConfig(configPath string) (*HubConfig, error) {
	// read the config file
	if !strings.HasSuffix(configPath, ".toml") {
		return nil, fmt.Errorf("config file must be a toml file")
	}
	body, err := cl.fileReader.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// unmarshal the config
	var config HubConfig
	if err := toml.Unmarshal(body, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
