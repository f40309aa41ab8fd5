package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port          int    `envconfig:"PORT" default:"8080"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL   string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL      string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	Version       string `envconfig:"VERSION" default:"dev"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"true"`
	BaseURL       string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	CookieSecure  bool   `envconfig:"COOKIE_SECURE" default:"false"`

	BcryptCost           int           `envconfig:"BCRYPT_COST" default:"12"`
	TokenSecret          string        `envconfig:"TOKEN_SECRET" required:"true"`
	TokenIssuer          string        `envconfig:"TOKEN_ISSUER" default:"fanleague"`
	ConfirmationTokenTTL time.Duration `envconfig:"CONFIRMATION_TOKEN_TTL" default:"24h"`
	SessionTTL           time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	RememberSessionTTL   time.Duration `envconfig:"REMEMBER_SESSION_TTL" default:"336h"`
	LockoutMaxAttempts   int           `envconfig:"LOCKOUT_MAX_ATTEMPTS" default:"5"`
	LockoutDuration      time.Duration `envconfig:"LOCKOUT_DURATION" default:"5m"`
	LoginRatePerMinute   int           `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:""`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`
	MailFrom     string `envconfig:"MAIL_FROM" default:"no-reply@fanleague.local"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:""`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:""`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
