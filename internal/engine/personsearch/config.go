// internal/engine/personsearch/config.go
package personsearch

import "fmt"

// Config holds the person browsing defaults.
type Config struct {
	// PageSize is the listing page size sent to the collaborator.
	PageSize int
	// Sort is the collaborator sort expression, e.g. "name,asc".
	Sort string
}

func DefaultConfig() *Config {
	return &Config{
		PageSize: 10,
		Sort:     "name,asc",
	}
}

func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	return nil
}
