// internal/workers/marketplace/rank-listings/config.go
package ranklistings

import "time"

type Config struct {
	Timeout       time.Duration
	MaxCandidates int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		MaxCandidates: 2000,
	}
}
