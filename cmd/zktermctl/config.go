package main

import (
	"flag"
	"os"

	"gopkg.in/yaml.v2"
)

// config holds the connection parameters for the demo CLI. It is loaded
// from an optional YAML file so the harness doesn't require a long flag
// line every run, the way this stack's other services load theirs.
type config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password int    `yaml:"password"`
	Timezone string `yaml:"timezone"`
	ForceUDP bool   `yaml:"force_udp"`
	Verbose  bool   `yaml:"verbose"`
}

func defaultConfig() config {
	return config{
		Host:     "192.168.1.201",
		Port:     4370,
		Timezone: "Asia/Shanghai",
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func parseFlags() (config, error) {
	var configPath string
	cfg := defaultConfig()

	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.StringVar(&cfg.Host, "host", cfg.Host, "terminal address")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "terminal port")
	flag.IntVar(&cfg.Password, "password", cfg.Password, "device comm password")
	flag.BoolVar(&cfg.ForceUDP, "udp", cfg.ForceUDP, "force UDP transport")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")
	flag.Parse()

	if configPath != "" {
		return loadConfig(configPath)
	}
	return cfg, nil
}
