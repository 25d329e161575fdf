package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	for i := range cfg.Queues {
		q := &cfg.Queues[i]
		if q.BatchSize == 0 {
			q.BatchSize = 100
		}
		if q.Workers == 0 {
			q.Workers = 4
		}
		if q.PollInterval == 0 {
			q.PollInterval = Duration(1 * time.Second)
		}
		if q.MessageTimeout == 0 {
			q.MessageTimeout = Duration(30 * time.Second)
		}
		if q.Handler.Type == "" {
			q.Handler.Type = HandlerLog
		}
		if q.Handler.Timeout == 0 {
			q.Handler.Timeout = q.MessageTimeout
		}
		if q.Ack.Type == "" {
			q.Ack.Type = StrategySkipAll
		}
	}

	return &cfg, nil
}
