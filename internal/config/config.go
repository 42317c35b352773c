package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Google   GoogleConfig
	LinkedIn LinkedInConfig
	Stripe   StripeConfig
	Razorpay RazorpayConfig
	Frontend FrontendConfig
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// JWTConfig holds token signing settings. TTLs follow the usual
// short access / long refresh split and are overridable per environment.
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	AccessTTLMinutes   int    `mapstructure:"accessttlminutes"`
	RefreshTTLDays     int    `mapstructure:"refreshttldays"`
	RevocationTTLHours int    `mapstructure:"revocationttlhours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"fromname"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
	RedirectURL  string `mapstructure:"redirecturl"`
}

type LinkedInConfig struct {
	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
	RedirectURL  string `mapstructure:"redirecturl"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secretkey"`
	WebhookSecret string `mapstructure:"webhooksecret"`
}

type RazorpayConfig struct {
	KeyID         string `mapstructure:"keyid"`
	KeySecret     string `mapstructure:"keysecret"`
	WebhookSecret string `mapstructure:"webhooksecret"`
}

// FrontendConfig holds the public URL used to build links in outbound emails.
type FrontendConfig struct {
	URL string `mapstructure:"url"`
}

// Load creates a new Config object from environment variables.
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Load .env into process environment so BindEnv sees file-based values too.
	if err := godotenv.Load(); err != nil {
		log.Printf("godotenv could not load .env: %v", err)
	}

	// Bind structured keys to environment variables.
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("redis.url", "REDIS_URL")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET_KEY")
	_ = viper.BindEnv("jwt.accessttlminutes", "ACCESS_TOKEN_EXPIRE_MINUTES")
	_ = viper.BindEnv("jwt.refreshttldays", "REFRESH_TOKEN_EXPIRE_DAYS")
	_ = viper.BindEnv("jwt.revocationttlhours", "TOKEN_REVOCATION_TTL_HOURS")
	_ = viper.BindEnv("smtp.host", "SMTP_HOST")
	_ = viper.BindEnv("smtp.port", "SMTP_PORT")
	_ = viper.BindEnv("smtp.username", "SMTP_USERNAME")
	_ = viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	_ = viper.BindEnv("smtp.from", "EMAIL_FROM")
	_ = viper.BindEnv("smtp.fromname", "EMAIL_FROM_NAME")
	_ = viper.BindEnv("google.clientid", "GOOGLE_CLIENT_ID")
	_ = viper.BindEnv("google.clientsecret", "GOOGLE_CLIENT_SECRET")
	_ = viper.BindEnv("google.redirecturl", "GOOGLE_REDIRECT_URI")
	_ = viper.BindEnv("linkedin.clientid", "LINKEDIN_CLIENT_ID")
	_ = viper.BindEnv("linkedin.clientsecret", "LINKEDIN_CLIENT_SECRET")
	_ = viper.BindEnv("linkedin.redirecturl", "LINKEDIN_REDIRECT_URI")
	_ = viper.BindEnv("stripe.secretkey", "STRIPE_SECRET_KEY")
	_ = viper.BindEnv("stripe.webhooksecret", "STRIPE_WEBHOOK_SECRET")
	_ = viper.BindEnv("razorpay.keyid", "RAZORPAY_KEY_ID")
	_ = viper.BindEnv("razorpay.keysecret", "RAZORPAY_KEY_SECRET")
	_ = viper.BindEnv("razorpay.webhooksecret", "RAZORPAY_WEBHOOK_SECRET")
	_ = viper.BindEnv("frontend.url", "FRONTEND_URL")

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env file is fine as long as the environment carries the config.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("error reading config file: %s", err)
		}
		log.Printf(".env file not found, relying on environment variables")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("unable to decode config into struct: %v", err)
	}

	// --- Set default values ---
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.JWT.AccessTTLMinutes <= 0 {
		cfg.JWT.AccessTTLMinutes = 30
	}
	if cfg.JWT.RefreshTTLDays <= 0 {
		cfg.JWT.RefreshTTLDays = 7
	}
	if cfg.JWT.RevocationTTLHours <= 0 {
		cfg.JWT.RevocationTTLHours = 24
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Frontend.URL == "" {
		cfg.Frontend.URL = "http://localhost:5173"
	}

	return &cfg
}
