// If you are AI: This file applies environment variable overrides on top of the YAML configuration.

package config

import (
	"fmt"
	"strconv"
)

// LookupFunc matches os.LookupEnv so tests can supply a fixed environment.
type LookupFunc func(key string) (string, bool)

// applyEnv overrides secrets and database coordinates from the environment.
// Variables that are unset leave the file value untouched.
func (c *Config) applyEnv(lookup LookupFunc) error {
	if v, ok := lookup("SECRET_JWT_KEY"); ok && v != "" {
		c.Auth.Secret = v
	}
	if v, ok := lookup("DB_USER"); ok && v != "" {
		c.Database.User = v
	}
	if v, ok := lookup("DB_PASSWORD"); ok && v != "" {
		c.Database.Password = v
	}
	if v, ok := lookup("DB_HOST"); ok && v != "" {
		c.Database.Host = v
	}
	if v, ok := lookup("DB_NAME"); ok && v != "" {
		c.Database.Name = v
	}
	if v, ok := lookup("DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_PORT: %w", err)
		}
		c.Database.Port = port
	}
	return nil
}
