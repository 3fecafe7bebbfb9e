// internal/engine/cardgrid/config.go
package cardgrid

import (
	"fmt"
	"time"
)

// Config holds the grid builder settings.
type Config struct {
	// CacheEnabled turns the redis snapshot cache on. The builder works
	// without it; every build then goes to the collaborator.
	CacheEnabled bool
	// CacheTTL bounds snapshot staleness between mutations.
	CacheTTL time.Duration
	// ValidateResponses runs the card schema check before alignment.
	ValidateResponses bool
}

func DefaultConfig() *Config {
	return &Config{
		CacheEnabled:      false,
		CacheTTL:          60 * time.Second,
		ValidateResponses: true,
	}
}

func (c *Config) Validate() error {
	if c.CacheEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive when cache is enabled")
	}
	return nil
}
