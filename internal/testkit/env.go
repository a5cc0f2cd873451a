// Package testkit provides container-backed Postgres and Redis for integration tests.
package testkit

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Env holds integration test infrastructure settings. Every field can be set
// through a METALSVC_TEST_ environment variable, e.g. METALSVC_TEST_PG_DSN.
type Env struct {
	PGImage        string        `mapstructure:"pg_image"`
	RedisImage     string        `mapstructure:"redis_image"`
	PGDSN          string        `mapstructure:"pg_dsn"`          // Skips the Postgres container when set.
	RedisAddr      string        `mapstructure:"redis_addr"`      // Skips the Redis container when set.
	StartupTimeout time.Duration `mapstructure:"startup_timeout"` // Go duration, e.g. "90s".
	KeepContainers bool          `mapstructure:"keep_containers"`
}

// LoadEnv reads test infrastructure settings from the environment.
func LoadEnv() (Env, error) {
	v := viper.New()
	v.SetEnvPrefix("METALSVC_TEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("pg_image", "postgres:18.1-alpine")
	v.SetDefault("redis_image", "redis:8.4.0-alpine")
	v.SetDefault("pg_dsn", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("startup_timeout", 90*time.Second)
	v.SetDefault("keep_containers", false)

	var env Env
	if err := v.Unmarshal(&env); err != nil {
		return Env{}, err
	}
	return env, nil
}
