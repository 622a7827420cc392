package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Billing Billing `envPrefix:"BILLING_"`
	Jobs    Jobs    `envPrefix:"JOBS_"`
	Mail    Mail    `envPrefix:"MAIL_"`
}

type Billing struct {
	APIURL string `env:"API_URL"`
	APIKey string `env:"API_KEY"`
	// Shared secret used to HMAC-verify gateway webhook callbacks.
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	// Platform cut taken from each payout, as a decimal fraction.
	PlatformFeeRate string `env:"PLATFORM_FEE_RATE" envDefault:"0.05"`
}

type Jobs struct {
	// Shared secret required by the scheduled-job endpoints.
	Secret string `env:"SECRET"`
	// Unpaid orders older than this get auto-cancelled.
	PendingOrderCutoff time.Duration `env:"PENDING_ORDER_CUTOFF" envDefault:"3m"`
}

type Mail struct {
	APIURL  string        `env:"API_URL"`
	Sender  string        `env:"SENDER" envDefault:"noreply@livesales.local"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
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

// Scheduler configures the standalone reminder worker (cmd/reminderd).
type Scheduler struct {
	Log Log

	// Endpoint of the reminder-check operation on the API server.
	CheckURL string `env:"REMINDER_CHECK_URL" envDefault:"http://localhost:8080/api/jobs/send-reminders"`
	// Lower bound for the adaptive polling interval.
	Floor time.Duration `env:"REMINDER_FLOOR" envDefault:"15s"`
	// Cadence used while no seller has an active reminder frequency.
	Idle time.Duration `env:"REMINDER_IDLE" envDefault:"5m"`
	// Sleep applied after a failed check before retrying.
	Backoff time.Duration `env:"REMINDER_BACKOFF" envDefault:"5s"`
	// HTTP timeout for a single reminder-check call.
	CheckTimeout time.Duration `env:"REMINDER_CHECK_TIMEOUT" envDefault:"30s"`
}
