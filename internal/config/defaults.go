package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 20 << 20
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 2 * time.Minute
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-3.5-turbo"
	}
	if cfg.OpenAI.Temperature == nil {
		temperature := 0.3
		cfg.OpenAI.Temperature = &temperature
	}
	if cfg.Results.TTL == 0 {
		cfg.Results.TTL = time.Hour
	}
	if cfg.Results.MaxEntries == 0 {
		cfg.Results.MaxEntries = 256
	}
	if cfg.Watch.Mode == "" {
		cfg.Watch.Mode = "remote"
	}
}
