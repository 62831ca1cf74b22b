package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A Config is the on-disk configuration of an always-range server.
// Files ending in .toml are read as TOML, anything else as YAML.
type Config struct {
	Port      int        `yaml:"port" toml:"port"`
	DB        string     `yaml:"db" toml:"db"`
	LogFile   string     `yaml:"logFile" toml:"logFile"`
	Resources []Resource `yaml:"resources" toml:"resources"`
}

// A Resource is a file preloaded into the store and served under Path.
type Resource struct {
	Path        string `yaml:"path" toml:"path"`
	File        string `yaml:"file" toml:"file"`
	ContentType string `yaml:"contentType" toml:"contentType"`
}

func Load(filename string) (Config, error) {
	var config Config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrap(err, "failed to read configuration file")
	}

	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		err = toml.Unmarshal(configBytes, &config)
	} else {
		err = yaml.Unmarshal(configBytes, &config)
	}
	if err != nil {
		return config, errors.Wrapf(err, "failed to decode %s", filename)
	}

	for i, res := range config.Resources {
		if res.Path == "" || res.File == "" {
			return config, errors.Errorf("resource %d needs both path and file", i)
		}
		if !strings.HasPrefix(res.Path, "/") {
			config.Resources[i].Path = "/" + res.Path
		}
	}
	return config, nil
}
