package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"bath-planner.db"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"bathplanner"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address          string   `envconfig:"BATH_PLANNER_ADDRESS" default:":3443"`
	MetricsAddress   string   `envconfig:"BATH_PLANNER_METRICS_ADDRESS" default:":8080"`
	AllowedOrigins   []string `envconfig:"BATH_PLANNER_ALLOWED_ORIGINS" default:"*"`
	LogLevel         string   `envconfig:"BATH_PLANNER_LOG_LEVEL" default:"info"`
	MigrationFolder  string   `envconfig:"BATH_PLANNER_MIGRATIONS_FOLDER" default:""`
	ModulesFile      string   `envconfig:"BATH_PLANNER_MODULES_FILE" default:"modules.json"`
	WatchModulesFile bool     `envconfig:"BATH_PLANNER_WATCH_MODULES_FILE" default:"false"`
	// Seed loads the default modules when neither the database nor the modules file holds any.
	Seed       bool `envconfig:"BATH_PLANNER_SEED" default:"false"`
	Correction correctionConfig
	Events     eventsConfig
}

type eventsConfig struct {
	// Enabled logs a cloudevent for every recorded calculation.
	Enabled bool   `envconfig:"BATH_PLANNER_EVENTS_ENABLED" default:"false"`
	Topic   string `envconfig:"BATH_PLANNER_EVENTS_TOPIC" default:"bath.planner.events"`
}

type correctionConfig struct {
	RelTolerance float64 `envconfig:"BATH_PLANNER_REL_TOLERANCE" default:"1e-9"`
	AbsTolerance float64 `envconfig:"BATH_PLANNER_ABS_TOLERANCE" default:"1e-9"`
	// HistoryLimit caps the number of corrections returned by the history endpoint.
	HistoryLimit int `envconfig:"BATH_PLANNER_HISTORY_LIMIT" default:"100"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}
