package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	ServiceName   string        `mapstructure:"service_name"`
	Env           string        `mapstructure:"env"`
	Port          string        `mapstructure:"port"`
	Temporal      Temporal      `mapstructure:"temporal"`
	Database      Database      `mapstructure:"database"`
	AWS           AWS           `mapstructure:"aws"`
	Notifications Notifications `mapstructure:"notifications"`
}

type Temporal struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type AWS struct {
	Region             string `mapstructure:"region"`
	NotificationsTopic string `mapstructure:"notifications_topic"`
	PartnerEventsQueue string `mapstructure:"partner_events_queue"`
}

type Notifications struct {
	// Driver selects the notifier implementation: "sns" or "log"
	Driver string `mapstructure:"driver"`
}

func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("unable to get current file")
	}

	configDir := filepath.Join(filepath.Dir(filename))
	viper.SetConfigName(getConfigName())
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	// Allow environment variables to override config
	viper.AutomaticEnv()
	viper.SetEnvPrefix("PREORDER")

	setDefaultsFromEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

// setDefaultsFromEnv sets defaults from environment variables
func setDefaultsFromEnv() {
	// Service defaults
	viper.SetDefault("service_name", "preorder-service")
	viper.SetDefault("env", getEnv("ENV", "local"))
	viper.SetDefault("port", getEnv("PORT", "8080"))

	// Temporal defaults
	viper.SetDefault("temporal.host_port", getEnv("TEMPORAL_ADDRESS", "localhost:7233"))
	viper.SetDefault("temporal.namespace", getEnv("TEMPORAL_NAMESPACE", "default"))
	viper.SetDefault("temporal.task_queue", getEnv("TEMPORAL_TASK_QUEUE", "preorder-queue"))

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "preorder_system")
	viper.SetDefault("database.ssl_mode", "disable")

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	// AWS defaults
	viper.SetDefault("aws.region", getEnv("AWS_DEFAULT_REGION", "us-east-1"))
	viper.SetDefault("aws.notifications_topic", getEnv("SNS_NOTIFICATIONS_TOPIC", "arn:aws:sns:us-east-1:000000000000:preorder-notifications"))
	viper.SetDefault("aws.partner_events_queue", getEnv("SQS_PARTNER_EVENTS_QUEUE", "http://localhost:4566/000000000000/partner-events"))

	// Notification defaults
	viper.SetDefault("notifications.driver", getEnv("NOTIFICATIONS_DRIVER", "log"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDatabaseURL constructs database URL from config
func (c *Config) GetDatabaseURL() string {
	if url := viper.GetString("database.url"); url != "" {
		return url
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
