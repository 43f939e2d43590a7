// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs to start. The verifier audience
// lives here and is passed explicitly into the auth backend; nothing reads
// it ambiently.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"./data/superlists.db"`

	// PersonaVerifyURL is the assertion verification endpoint.
	PersonaVerifyURL string `env:"PERSONA_VERIFY_URL" envDefault:"https://verifier.login.persona.org/verify"`
	// PersonaAudience is the audience/domain presented with each assertion.
	PersonaAudience string `env:"PERSONA_AUDIENCE" envDefault:"localhost"`

	JWTSecret     string        `env:"JWT_SECRET,required"`
	TokenDuration time.Duration `env:"TOKEN_DURATION" envDefault:"24h"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
