// Package config loads runtime configuration for the TuneKeeper CLI.
//
// Sources, later ones winning: built-in defaults, an optional JSON file
// selected with -c or -config, then the short flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-t int      per-request timeout, seconds
//	-f string   path of the local SQLite session store
//
// JSON example (durations as "10s" or integer nanoseconds):
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "local_db_path": "tunekeeper.db"
//	}
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds runtime settings for the TuneKeeper CLI.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	LocalDBPath        string
}

var ErrInvalidTimeout = errors.New("request timeout must be positive")

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.LocalDBPath = "tunekeeper.db"
}

// LoadConfig applies defaults, then JSON, then flags from os.Args.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	return cfg, nil
}
