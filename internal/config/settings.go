package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables read by LoadSettings
const EnvPrefix = "FIREPLAN"

// Settings are the runtime knobs of the CLI and the HTTP server. They never change the
// numbers a plan produces.
type Settings struct {
	Log        LogSettings        `mapstructure:"log"`
	Simulation SimulationSettings `mapstructure:"simulation"`
	Server     ServerSettings     `mapstructure:"server"`
}

type LogSettings struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

type SimulationSettings struct {
	// Workers caps concurrent trials; 0 uses every CPU
	Workers   int `mapstructure:"workers"`
	MaxTrials int `mapstructure:"max_trials"`
}

type ServerSettings struct {
	Addr string `mapstructure:"addr"`
}

// LoadSettings reads settings from an optional YAML file and FIREPLAN_* environment
// variables, e.g. FIREPLAN_LOG_LEVEL=debug. An empty path reads the environment only.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.max_trials", 10000)
	v.SetDefault("server.addr", ":8080")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
