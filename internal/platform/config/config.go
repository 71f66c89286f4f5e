package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// JWTSecret verifies bearer tokens minted by the identity provider.
	JWTSecret string

	// Well-known tag ids used to derive the keyTag field on game index records.
	ShowTagID     string
	ExerciseTagID string
	WarmupTagID   string

	WorkerPollInterval time.Duration

	EnableTagSyncConsumer  bool
	EnableNameSyncConsumer bool
}

// Load reads configuration from the environment (IMPROVDB_ prefix) with an
// optional config file next to the binary.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("IMPROVDB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_name", "improvdb")
	v.SetDefault("http_port", "8080")
	v.SetDefault("worker_poll_interval", 2*time.Second)
	v.SetDefault("enable_tag_sync_consumer", true)
	v.SetDefault("enable_name_sync_consumer", true)

	v.SetConfigName("improvdb")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return Config{
		ServiceName: v.GetString("service_name"),
		HTTPPort:    v.GetString("http_port"),
		PostgresDSN: v.GetString("postgres_dsn"),
		JWTSecret:   v.GetString("jwt_secret"),

		ShowTagID:     v.GetString("show_tag_id"),
		ExerciseTagID: v.GetString("exercise_tag_id"),
		WarmupTagID:   v.GetString("warmup_tag_id"),

		WorkerPollInterval: v.GetDuration("worker_poll_interval"),

		EnableTagSyncConsumer:  v.GetBool("enable_tag_sync_consumer"),
		EnableNameSyncConsumer: v.GetBool("enable_name_sync_consumer"),
	}, nil
}
