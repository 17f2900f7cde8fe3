// internal/workers/marketplace/invalidate-search-cache/config.go
package invalidatesearchcache

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
