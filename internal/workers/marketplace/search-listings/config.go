// internal/workers/marketplace/search-listings/config.go
package searchlistings

import "time"

type Config struct {
	Timeout time.Duration
	// FailWhenAllDegraded fails the job with SOURCE_UNAVAILABLE instead of
	// completing it with an empty result when no requested kind could be
	// fetched, so the broker retries it.
	FailWhenAllDegraded bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             10 * time.Second,
		FailWhenAllDegraded: true,
	}
}
