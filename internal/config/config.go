package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Processor Processor `envPrefix:"PROCESSOR_"`
	Migrator  Migrator  `envPrefix:"MIGRATOR_"`
}

// Processor holds the identifiers the engine needs to recognise its own
// notifications. Outbound API credentials live with the API client, which is
// outside this service.
type Processor struct {
	MerchantAccountID string `env:"MERCHANT_ACCOUNT_ID"`
	WebhookID         string `env:"WEBHOOK_ID"`
}

type Migrator struct {
	// Enabled gates the admin endpoint that triggers the legacy import.
	Enabled bool `env:"ENABLED" envDefault:"true"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
