package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the full account API configuration, parsed from environment
// variables at startup. Secrets and TTLs are injected from here; nothing in
// the codebase reads the environment directly besides the mailer.
type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Token  TokenConfig
	Hash   HashConfig
	App    AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR"             envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"     envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// MongoConfig holds database connection settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DATABASE" envDefault:"account_api"`
}

// TokenConfig holds JWT and opaque token settings. Access and refresh
// secrets must differ; they form independent key namespaces.
type TokenConfig struct {
	AccessTokenSecret           string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret          string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTokenExpiresIn        time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN"         envDefault:"15m"`
	RefreshTokenExpiresIn       time.Duration `env:"REFRESH_TOKEN_EXPIRES_IN"        envDefault:"720h"`
	VerificationTokenExpiresIn  time.Duration `env:"VERIFICATION_TOKEN_EXPIRES_IN"   envDefault:"24h"`
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TOKEN_EXPIRES_IN" envDefault:"1h"`
	Issuer                      string        `env:"TOKEN_ISSUER"   envDefault:"account-api"`
	Audience                    string        `env:"TOKEN_AUDIENCE" envDefault:"account-api"`
}

// HashConfig tunes argon2 password hashing cost.
type HashConfig struct {
	TimeCost    uint32 `env:"HASH_TIME_COST"   envDefault:"3"`
	MemoryCost  uint32 `env:"HASH_MEMORY_COST" envDefault:"65536"`
	Parallelism uint8  `env:"HASH_PARALLELISM" envDefault:"4"`
}

// AppConfig holds application level settings.
type AppConfig struct {
	VerificationURL          string `env:"APP_VERIFICATION_URL"`
	PasswordResetURL         string `env:"APP_PASSWORD_RESET_URL"`
	CookieSecure             bool   `env:"APP_COOKIE_SECURE"              envDefault:"false"`
	RequireEmailVerification bool   `env:"APP_REQUIRE_EMAIL_VERIFICATION" envDefault:"true"`
}

// NewConfig creates a Config instance from environment variables.
func NewConfig(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Token.AccessTokenSecret == "" {
		return fmt.Errorf("missing ACCESS_TOKEN_SECRET environment variable")
	}
	if c.Token.RefreshTokenSecret == "" {
		return fmt.Errorf("missing REFRESH_TOKEN_SECRET environment variable")
	}
	if c.Token.AccessTokenSecret == c.Token.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.App.VerificationURL == "" {
		return fmt.Errorf("missing APP_VERIFICATION_URL environment variable")
	}
	if c.App.PasswordResetURL == "" {
		return fmt.Errorf("missing APP_PASSWORD_RESET_URL environment variable")
	}

	return nil
}
