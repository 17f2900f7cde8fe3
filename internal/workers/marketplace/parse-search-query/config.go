// internal/workers/marketplace/parse-search-query/config.go
package parsesearchquery

type Config struct {
	MaxQueryLength int
}

func LoadConfig() *Config {
	return &Config{
		MaxQueryLength: 500,
	}
}
