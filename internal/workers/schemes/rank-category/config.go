// internal/workers/schemes/rank-category/config.go
package rankcategory

import "time"

type Config struct {
	// MaxItems applies when the job does not set maxItems.
	MaxItems int
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxItems: 20,
		Timeout:  10 * time.Second,
	}
}
