package config

import (
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/viper"
)

/**
 * Config is the process configuration for the workflow server. Every
 * field has a default, so a missing config file runs a usable local
 * setup: in memory archive, pill_data.csv next to the process.
 */
type Config struct {
	Server struct {
		Host              string `mapstructure:"host"`
		Port              int    `mapstructure:"port"`
		StaticDir         string `mapstructure:"static_dir"`
		InputFile         string `mapstructure:"input_file"`
		OutputDir         string `mapstructure:"output_dir"`
		DefaultDataset    string `mapstructure:"default_dataset"`
		StrictColumns     bool   `mapstructure:"strict_columns"`
		MaxConcurrentRuns int    `mapstructure:"max_concurrent_runs"`
	} `mapstructure:"server"`
	Store struct {
		// Driver picks the archive backend, mem or postgres.
		Driver   string `mapstructure:"driver"`
		Postgres struct {
			Host     string `mapstructure:"host"`
			Port     int    `mapstructure:"port"`
			User     string `mapstructure:"user"`
			Password string `mapstructure:"password"`
			Database string `mapstructure:"database"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"store"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

/**
 * Load reads the configuration from path when given, otherwise from a
 * config.yaml found next to the process or under ./config. Environment
 * variables override the file under the RETEFLOW_ prefix, with dots
 * turned into underscores: RETEFLOW_SERVER_PORT covers server.port.
 * Without an explicit path a missing file is not an error.
 */
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("RETEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Trace(err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.input_file", "pill_data.csv")
	v.SetDefault("server.output_dir", "processed_output")
	v.SetDefault("server.default_dataset", "")
	v.SetDefault("server.strict_columns", false)
	v.SetDefault("server.max_concurrent_runs", 4)

	v.SetDefault("store.driver", "mem")
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.user", "postgres")
	v.SetDefault("store.postgres.password", "postgres")
	v.SetDefault("store.postgres.database", "reteflow")
	v.SetDefault("store.postgres.sslmode", "disable")

	v.SetDefault("log.level", "info")
}
