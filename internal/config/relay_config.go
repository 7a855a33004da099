package config

import "errors"

// RelayConfig holds configuration for the outbox relay service.
type RelayConfig struct {
	DatabaseURL    string `mapstructure:"DB_CONNECTION_STRING"`
	RabbitMQURL    string `mapstructure:"RABBITMQ_URL"`
	EventQueueName string `mapstructure:"EVENT_QUEUE_NAME"`
	HealthAddr     string `mapstructure:"RELAY_HEALTH_ADDR"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogFormat      string `mapstructure:"LOG_FORMAT"`
}

func LoadRelayConfig() (*RelayConfig, error) {
	v := newViper()

	v.SetDefault("DB_CONNECTION_STRING", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENT_QUEUE_NAME", "training-events")
	v.SetDefault("RELAY_HEALTH_ADDR", ":8090")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	var cfg RelayConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: DB_CONNECTION_STRING must be set")
	}
	if cfg.RabbitMQURL == "" {
		return nil, errors.New("config: RABBITMQ_URL must be set")
	}
	return &cfg, nil
}
