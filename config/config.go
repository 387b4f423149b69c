package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverGorm     = "gorm"
	DriverDynamoDB = "dynamodb"

	NotifyKafka = "kafka"
	NotifySMTP  = "smtp"
	NotifyLog   = "log"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	SMTP          SMTPConfig          `yaml:"smtp"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Apartados     ApartadosConfig     `yaml:"apartados"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Worker        WorkerConfig        `yaml:"worker"`
	Log           LogConfig           `yaml:"log"`
	Auth          AuthConfig          `yaml:"auth"`
}

type HTTPConfig struct {
	Address     string   `yaml:"address" envconfig:"HTTP_ADDRESS"`
	BasePath    string   `yaml:"base_path"`
	CORSOrigins []string `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
	Docs        bool     `yaml:"docs"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" envconfig:"DATABASE_DRIVER"`
	URL      string `yaml:"url" envconfig:"DATABASE_URL"`
	Host     string `yaml:"host" envconfig:"DATABASE_HOST"`
	Port     int    `yaml:"port" envconfig:"DATABASE_PORT"`
	User     string `yaml:"user" envconfig:"DATABASE_USER"`
	Password string `yaml:"password" envconfig:"DATABASE_PASSWORD"`
	Name     string `yaml:"name" envconfig:"DATABASE_NAME"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`

	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

// DSN returns URL when set, otherwise a key/value DSN built from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type DynamoDBConfig struct {
	Region         string `yaml:"region" envconfig:"AWS_REGION"`
	Endpoint       string `yaml:"endpoint" envconfig:"DYNAMODB_ENDPOINT"`
	AccessKeyID    string `yaml:"access_key_id" envconfig:"AWS_ACCESS_KEY_ID"`
	SecretKey      string `yaml:"secret_access_key" envconfig:"AWS_SECRET_ACCESS_KEY"`
	ApartadosTable string `yaml:"apartados_table" envconfig:"APARTADOS_TABLE"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
	PublishRetries     int      `yaml:"publish_retries"`
}

type SMTPConfig struct {
	Host          string `yaml:"host" envconfig:"SMTP_HOST"`
	Port          int    `yaml:"port" envconfig:"SMTP_PORT"`
	Username      string `yaml:"username" envconfig:"SMTP_USER"`
	Password      string `yaml:"password" envconfig:"SMTP_PASSWORD"`
	From          string `yaml:"from" envconfig:"SMTP_FROM"`
	Brand         string `yaml:"brand"`
	StoreAddress  string `yaml:"store_address"`
	StoreHours    string `yaml:"store_hours"`
	StorePhone    string `yaml:"store_phone"`
	Timezone      string `yaml:"timezone"`
	QRSize        int    `yaml:"qr_size"`
	Attempts      int    `yaml:"attempts"`
	VerifyOnStart bool   `yaml:"verify_on_start"`
}

type NotificationsConfig struct {
	Mode string `yaml:"mode" envconfig:"NOTIFICATIONS_MODE"`
}

type ApartadosConfig struct {
	HoldTTLHours         int  `yaml:"hold_ttl_hours"`
	CodeLength           int  `yaml:"code_length"`
	CodeAttempts         int  `yaml:"code_attempts"`
	StoreTimeoutSeconds  int  `yaml:"store_timeout_seconds"`
	NotifyTimeoutSeconds int  `yaml:"notify_timeout_seconds"`
	StrictCancel         bool `yaml:"strict_cancel"`
}

type CatalogConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	Issuer    string `yaml:"issuer"`
}

func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML, applies environment overrides and defaults, then validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":3000"
	}
	if c.HTTP.BasePath == "" {
		c.HTTP.BasePath = "/api"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.DynamoDB.Region == "" {
		c.Database.DynamoDB.Region = "us-east-1"
	}
	if c.Database.DynamoDB.ApartadosTable == "" {
		c.Database.DynamoDB.ApartadosTable = "apartados"
	}
	if c.Kafka.NotificationsTopic == "" {
		c.Kafka.NotificationsTopic = "apartados.notificaciones"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "noir-worker"
	}
	if c.Kafka.PublishRetries <= 0 {
		c.Kafka.PublishRetries = 3
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.Brand == "" {
		c.SMTP.Brand = "Modas Eclipse"
	}
	if c.SMTP.StoreAddress == "" {
		c.SMTP.StoreAddress = "Calle Ejemplo 123, Madrid"
	}
	if c.SMTP.StoreHours == "" {
		c.SMTP.StoreHours = "L-S 10:00 - 21:00"
	}
	if c.SMTP.StorePhone == "" {
		c.SMTP.StorePhone = "+34 900 000 000"
	}
	if c.SMTP.Timezone == "" {
		c.SMTP.Timezone = "Europe/Madrid"
	}
	if c.SMTP.QRSize <= 0 {
		c.SMTP.QRSize = 300
	}
	if c.SMTP.Attempts <= 0 {
		c.SMTP.Attempts = 3
	}
	if c.Notifications.Mode == "" {
		c.Notifications.Mode = NotifySMTP
		if len(c.Kafka.Brokers) > 0 {
			c.Notifications.Mode = NotifyKafka
		}
	}
	if c.Apartados.HoldTTLHours <= 0 {
		c.Apartados.HoldTTLHours = 24
	}
	if c.Apartados.CodeLength <= 0 {
		c.Apartados.CodeLength = 6
	}
	if c.Apartados.CodeAttempts <= 0 {
		c.Apartados.CodeAttempts = 5
	}
	if c.Apartados.StoreTimeoutSeconds <= 0 {
		c.Apartados.StoreTimeoutSeconds = 5
	}
	if c.Apartados.NotifyTimeoutSeconds <= 0 {
		c.Apartados.NotifyTimeoutSeconds = 10
	}
	if c.Catalog.CacheTTLSeconds <= 0 {
		c.Catalog.CacheTTLSeconds = 300
	}
	if c.Worker.ExpirationSweepMinutes <= 0 {
		c.Worker.ExpirationSweepMinutes = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverGorm:
		if c.Database.URL == "" && c.Database.Host == "" {
			return errors.Newf("database: url or host is required for driver %q", c.Database.Driver)
		}
	case DriverDynamoDB:
	default:
		return errors.Newf("database: unsupported driver %q", c.Database.Driver)
	}

	switch c.Notifications.Mode {
	case NotifyKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("notifications: kafka mode requires kafka.brokers")
		}
	case NotifySMTP:
		if c.SMTP.Host == "" {
			return errors.New("notifications: smtp mode requires smtp.host")
		}
	case NotifyLog:
	default:
		return errors.Newf("notifications: unsupported mode %q", c.Notifications.Mode)
	}

	if !strings.HasPrefix(c.HTTP.BasePath, "/") {
		return errors.Newf("http: base_path %q must start with /", c.HTTP.BasePath)
	}
	if c.Apartados.CodeLength < 4 {
		return errors.New("apartados: code_length must be at least 4")
	}
	return nil
}
