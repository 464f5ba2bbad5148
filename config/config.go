package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
}

type JWTConfig struct {
	Secret        string `yaml:"secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	ExpiryHours   int    `yaml:"expiry_hours"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
}

// EmailConfig holds SMTP transport settings. Credentials are overlaid from
// EMAIL_* environment variables so they never live in the config file.
type EmailConfig struct {
	Host        string        `yaml:"host" envconfig:"EMAIL_HOST"`
	Port        int           `yaml:"port" envconfig:"EMAIL_PORT"`
	Username    string        `yaml:"username" envconfig:"EMAIL_USER"`
	Password    string        `yaml:"password" envconfig:"EMAIL_PASS"`
	From        string        `yaml:"from" envconfig:"EMAIL_FROM"`
	SendTimeout time.Duration `yaml:"send_timeout" envconfig:"EMAIL_SEND_TIMEOUT"`
}

// SchedulerConfig drives the reminder scheduler's tick loop.
type SchedulerConfig struct {
	TickInterval   time.Duration `yaml:"tick_interval"`
	ReminderWindow time.Duration `yaml:"reminder_window"`
}

// CricketConfig points at the external cricket data provider.
type CricketConfig struct {
	BaseURL  string        `yaml:"base_url" envconfig:"CRICKET_API_URL"`
	APIKey   string        `yaml:"api_key" envconfig:"CRICKET_API_KEY"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Redis     RedisConfig     `yaml:"redis"`
	Email     EmailConfig     `yaml:"email"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Cricket   CricketConfig   `yaml:"cricket"`
	RateLimit struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	Security struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
		AllowedMethods []string `yaml:"allowed_methods"`
		AllowedHeaders []string `yaml:"allowed_headers"`
	} `yaml:"security"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets come from the environment, overriding anything in the file.
	if err := envconfig.Process("", &config.Email); err != nil {
		return nil, fmt.Errorf("failed to read email env config: %w", err)
	}
	if err := envconfig.Process("", &config.Cricket); err != nil {
		return nil, fmt.Errorf("failed to read cricket env config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Scheduler.TickInterval == 0 {
		c.Scheduler.TickInterval = 15 * time.Minute
	}
	if c.Scheduler.ReminderWindow == 0 {
		c.Scheduler.ReminderWindow = 10 * time.Minute
	}
	if c.Email.SendTimeout == 0 {
		c.Email.SendTimeout = 10 * time.Second
	}
	if c.Cricket.Timeout == 0 {
		c.Cricket.Timeout = 10 * time.Second
	}
	if c.Cricket.CacheTTL == 0 {
		c.Cricket.CacheTTL = 2 * time.Minute
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 100
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 200
	}
}

// DSN renders the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
