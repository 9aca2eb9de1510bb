package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Port        string   `env:"PORT" envDefault:"5250"`
		LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Database struct {
		// Shared-cache in-memory sqlite, seeded with fixtures on every start
		DSN string `env:"DATABASE_DSN" envDefault:"file:lagospaces?mode=memory&cache=shared"`
	}

	Auth struct {
		JWTSecret string        `env:"JWT_SECRET" envDefault:"lagospaces-dev-secret"`
		TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	}

	// Simulated latency for the payment, identity and auth providers that are not called
	Delays struct {
		Login        time.Duration `env:"LOGIN_DELAY" envDefault:"1500ms"`
		Signup       time.Duration `env:"SIGNUP_DELAY" envDefault:"1500ms"`
		Payment      time.Duration `env:"PAYMENT_DELAY" envDefault:"2s"`
		Agreement    time.Duration `env:"AGREEMENT_DELAY" envDefault:"1s"`
		Verification time.Duration `env:"VERIFICATION_DELAY" envDefault:"2s"`
		PostProperty time.Duration `env:"POST_PROPERTY_DELAY" envDefault:"2s"`
	}

	Booking struct {
		// Fee in naira
		Fee          int           `env:"BOOKING_FEE" envDefault:"5000"`
		RefundWindow time.Duration `env:"REFUND_WINDOW" envDefault:"168h"`
	}

	Wizard struct {
		SessionTTL time.Duration `env:"WIZARD_SESSION_TTL" envDefault:"30m"`
		// Upper bound for a single uploaded document, in bytes
		MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
	}

	EventProcessing struct {
		BufferSize     int `env:"EVENT_BUFFER_SIZE" envDefault:"100"`
		ProcessorCount int `env:"EVENT_PROCESSOR_COUNT" envDefault:"1"`
		MaxRetries     int `env:"EVENT_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"EVENT_RETRY_DELAY" envDefault:"1"`
	}

	Cache struct {
		RedisAddr     string        `env:"REDIS_ADDR"`
		RedisPassword string        `env:"REDIS_PASSWORD"`
		RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
		SearchTTL     time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"5m"`
	}

	Geocoder struct {
		// Nominatim-compatible search endpoint; empty disables remote lookups
		URL string `env:"GEOCODER_URL"`
	}

	Telegram struct {
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
		APIURL   string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	}
}

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. Keep it in sync with the envDefault tag.
const DefaultJWTSecret = "lagospaces-dev-secret"

// UsesDefaultJWTSecret reports whether tokens are signed with the public development secret
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.Auth.JWTSecret == DefaultJWTSecret
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
