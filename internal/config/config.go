package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env-default:"local"`
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL" env-required:"true"`
	Tokens      `yaml:"tokens"`
	Google      `yaml:"google"`
	RabbitMQ    `yaml:"rabbitmq"`
	Postgres    `yaml:"postgres"`
	HTTPServer  `yaml:"http_server"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env-default:"postgres"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-required:"true"`
	DBName   string `yaml:"dbname" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Tokens struct {
	SessionTokenTTL time.Duration `yaml:"session_token_ttl" env-default:"168h"`
	ResetTokenTTL   time.Duration `yaml:"reset_token_ttl" env-default:"10m"`
	SessionTokenKey string        `yaml:"session_token_key" env:"SESSION_TOKEN_KEY" env-required:"true"`
}

type Google struct {
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID" env-required:"true"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET" env-required:"true"`
	CallbackURL  string `yaml:"callback_url" env-required:"true"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env-required:"true"`
	QueueName string `yaml:"queue_name" env-required:"true"`
}

// MailWorker is the configuration of the mail delivery worker. It shares the
// rabbitmq section with the auth service but needs SMTP credentials instead
// of a database.
type MailWorker struct {
	Env      string `yaml:"env" env-default:"local"`
	RabbitMQ `yaml:"rabbitmq"`
	SMTP     `yaml:"smtp"`
}

type SMTP struct {
	Host     string `yaml:"host" env-required:"true"`
	Port     int    `yaml:"port" env-default:"587"`
	Username string `yaml:"username" env-required:"true"`
	Password string `yaml:"password" env:"SMTP_PASSWORD" env-required:"true"`
}

func MustLoad(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("Config file does not exist" + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}

func MustLoadMailWorker(configPath string) *MailWorker {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("Config file does not exist" + configPath)
	}

	var cfg MailWorker

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("Failed to read config" + err.Error())
	}

	return &cfg
}
