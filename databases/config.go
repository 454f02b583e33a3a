package databases

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Environment variable of the default database. Secondary databases use
// `DATABASE_<CODE>_URL`.
const DefaultEnvVar = `DATABASE_URL`

const (
	envPrefix = `DATABASE_`
	envSuffix = `_URL`
)

/*
Connection URLs of the default database and of secondary databases keyed by
lowercase code.

	DATABASE_URL=postgres://localhost/app      -> DefaultURL
	DATABASE_GTRA_URL=mysql://tw@host/gtra     -> Secondary["gtra"]
*/
type Config struct {
	DefaultURL string            `koanf:"default"`
	Secondary  map[string]string `koanf:"secondary"`
}

// Returns true if no database is configured.
func (self Config) IsEmpty() bool {
	return self.DefaultURL == `` && len(self.Secondary) == 0
}

/*
Loads the configuration from the process environment. Variables starting with
`DATABASE_` but not matching either form are ignored.
*/
func LoadConfig() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal database configuration: %w", err)
	}

	if cfg.Secondary == nil {
		cfg.Secondary = map[string]string{}
	}
	return cfg, nil
}

// Maps an environment variable name to a koanf path. Empty result skips the
// variable.
func envKey(key string) string {
	if key == DefaultEnvVar {
		return `default`
	}

	code, ok := strings.CutPrefix(key, envPrefix)
	if !ok {
		return ``
	}
	code, ok = strings.CutSuffix(code, envSuffix)
	if !ok || code == `` {
		return ``
	}
	return `secondary.` + strings.ToLower(code)
}
