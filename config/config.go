package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// HTTP server configuration
	Server struct {
		Port string `env:"HTTP_PORT" envDefault:"5250"`

		// Allowed CORS origins, comma separated
		AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	// Worksheet store configuration
	Store struct {
		// Path to the sqlite file backing the leads/users worksheets
		Path string `env:"DB_PATH" envDefault:"database/leads.db"`

		// Raw-table read memoization window (in seconds)
		CacheTTL int `env:"CACHE_TTL_SECONDS" envDefault:"60"`
	}

	// Authentication configuration
	Auth struct {
		// Secret used to sign session tokens
		JWTSecret string `env:"JWT_SECRET" envDefault:"leads-dashboard-secret"`

		// Session cookie name
		CookieName string `env:"COOKIE_NAME" envDefault:"leads-cookie"`

		// Session lifetime (in hours)
		CookieExpiryHours int `env:"COOKIE_EXPIRY_HOURS" envDefault:"24"`

		// bcrypt cost for hashing imported credentials
		BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
