package main

import (
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config is the optional hexd config file.  Flags override it.
type Config struct {
	HTTPAddr  string `yaml:"http"`
	DBFile    string `yaml:"db"`
	Templates string `yaml:"templates"`
	Seed      int64  `yaml:"seed"`
	Webhook   string `yaml:"webhook"`

	MQTT struct {
		Broker   string `yaml:"broker"`
		ClientId string `yaml:"client_id"`
		CmdTopic string `yaml:"cmd_topic"`
		OutTopic string `yaml:"out_topic"`
	} `yaml:"mqtt"`

	Tracing bool `yaml:"tracing"`
}

// ReadConfig loads a YAML config file.  A missing filename is fine.
func ReadConfig(filename string) (*Config, error) {
	c := &Config{}
	if filename == "" {
		return c, nil
	}
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(bs, c); err != nil {
		return nil, err
	}
	return c, nil
}
