// internal/config/database.go
package config

import (
	"fmt"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DSN is the libpq connection string. DATABASE_URL, when set, is used verbatim. Sessions run
// in UTC so the MMYY prefix of application numbers never depends on the server zone.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// IsMemory reports whether the in-process store should be used instead of postgres.
func (d *DatabaseConfig) IsMemory() bool {
	return d.Driver == DriverMemory
}

func (d *DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.MaxLifetime) * time.Second
}
