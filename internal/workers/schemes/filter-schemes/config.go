// internal/workers/schemes/filter-schemes/config.go
package filterschemes

import "time"

type Config struct {
	Timeout time.Duration
	// MaxPerList caps each risk list in the job output; 0 keeps everything.
	MaxPerList int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
