// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"

	"github.com/mitchellh/mapstructure"
	"github.com/urfave/cli"
	yaml "gopkg.in/yaml.v2"
)

// Config holds the daemon's settings.  Values come from the YAML
// configuration file; command-line flags override it.
type Config struct {
	// HTTP is the [ip]:port the daemon listens on.
	HTTP string `mapstructure:"http"`

	// Backend selects entity storage, as impl[:address].
	Backend string `mapstructure:"backend"`

	// LogRequests turns on per-request debug logging.
	LogRequests bool `mapstructure:"log_requests"`
}

// loadConfig resolves the daemon configuration: built-in defaults,
// then the YAML file if one is named, then explicit command-line
// flags.
func loadConfig(c *cli.Context) (Config, error) {
	config := Config{
		HTTP:    c.String("http"),
		Backend: c.String("backend"),
	}

	if filename := c.String("config"); filename != "" {
		raw, err := loadConfigYaml(filename)
		if err != nil {
			return config, err
		}
		if err = mapstructure.Decode(raw, &config); err != nil {
			return config, err
		}
	}

	// Flags given explicitly beat the file.
	if c.IsSet("http") {
		config.HTTP = c.String("http")
	}
	if c.IsSet("backend") {
		config.Backend = c.String("backend")
	}
	config.LogRequests = config.LogRequests || c.Bool("log-requests")
	return config, nil
}

func loadConfigYaml(filename string) (map[string]interface{}, error) {
	var result map[string]interface{}
	bytes, err := ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	return result, err
}
