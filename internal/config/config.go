package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CAKESHOP"

// Config хранит все параметры приложения
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Order    OrderConfig    `yaml:"order"`
	Notify   NotifyConfig   `yaml:"notify"`
	Mail     MailConfig     `yaml:"mail"`
	Shop     ShopConfig     `yaml:"shop"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"database"`
	SSLMode         string `yaml:"sslmode"`
	MaxOpenConns    int    `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `yaml:"max_idle_conns" split_words:"true"`
	ConnectAttempts int    `yaml:"connect_attempts" split_words:"true"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	UseTLS   bool   `yaml:"use_tls" split_words:"true"`
}

type UploadsConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes" split_words:"true"`
}

const (
	StockStrict = "strict"
	StockClamp  = "clamp"
)

type OrderConfig struct {
	StockPolicy     string `yaml:"stock_policy" split_words:"true"`
	RequireOpenSlot bool   `yaml:"require_open_slot" split_words:"true"`
}

const (
	TransportAMQP   = "amqp"
	TransportDirect = "direct"
)

type NotifyConfig struct {
	Transport     string        `yaml:"transport"`
	RelayInterval time.Duration `yaml:"relay_interval" split_words:"true"`
	BatchSize     int           `yaml:"batch_size" split_words:"true"`
	MaxAttempts   int           `yaml:"max_attempts" split_words:"true"`
	RetryDelay    time.Duration `yaml:"retry_delay" split_words:"true"`
	Prefetch      int           `yaml:"prefetch"`
}

const (
	MailSMTP = "smtp"
	MailLog  = "log"
)

type MailConfig struct {
	Driver      string `yaml:"driver"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	From        string `yaml:"from"`
	ShopAddress string `yaml:"shop_address" split_words:"true"`
}

type ShopConfig struct {
	Name    string `yaml:"name"`
	Tel     string `yaml:"tel"`
	Hours   string `yaml:"hours"`
	Address string `yaml:"address"`
}

type AdminConfig struct {
	PasswordHash  string `yaml:"password_hash" split_words:"true"`
	SessionSecret string `yaml:"session_secret" split_words:"true"`
}

func (a AdminConfig) Enabled() bool { return a.PasswordHash != "" }

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":3000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "cakeshop",
			Name:            "cakeshop",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnectAttempts: 10,
		},
		RabbitMQ: RabbitMQConfig{Host: "localhost", Port: 5672, User: "guest", Password: "guest", VHost: "/"},
		Uploads:  UploadsConfig{Dir: "uploads", MaxBytes: 5 << 20},
		Order:    OrderConfig{StockPolicy: StockStrict},
		Notify: NotifyConfig{
			Transport:     TransportAMQP,
			RelayInterval: 2 * time.Second,
			BatchSize:     20,
			MaxAttempts:   5,
			RetryDelay:    30 * time.Second,
			Prefetch:      5,
		},
		Mail: MailConfig{Driver: MailLog, Port: 587},
		Shop: ShopConfig{
			Name:  "Patisserie H.Yuji",
			Tel:   "080-9854-2849",
			Hours: "11:00〜19:00",
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads defaults, then the YAML file at path (if present), then
// a .env file, then CAKESHOP_* environment variables. Env keys come from the
// field path only (CAKESHOP_DATABASE_USER, CAKESHOP_NOTIFY_MAX_ATTEMPTS), so
// ambient variables such as USER or PORT are never read.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Order.StockPolicy {
	case StockStrict, StockClamp:
	default:
		return fmt.Errorf("order.stock_policy: unknown value %q", c.Order.StockPolicy)
	}
	switch c.Notify.Transport {
	case TransportAMQP, TransportDirect:
	default:
		return fmt.Errorf("notify.transport: unknown value %q", c.Notify.Transport)
	}
	switch c.Mail.Driver {
	case MailSMTP, MailLog:
	default:
		return fmt.Errorf("mail.driver: unknown value %q", c.Mail.Driver)
	}
	if c.Mail.Driver == MailSMTP && (c.Mail.Host == "" || c.Mail.From == "") {
		return fmt.Errorf("mail: host and from are required for the smtp driver")
	}
	if c.Admin.Enabled() && len(c.Admin.SessionSecret) < 32 {
		return fmt.Errorf("admin.session_secret must be at least 32 bytes when a password is set")
	}
	if c.Notify.MaxAttempts <= 0 {
		return fmt.Errorf("notify.max_attempts must be positive")
	}
	return nil
}
