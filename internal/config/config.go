package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	WSPath       string        `mapstructure:"ws_path"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	Log          LogConfig     `mapstructure:"log"`
	Sim          SimConfig     `mapstructure:"sim"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SimConfig configures the robot simulator.
type SimConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
	ActionDuration time.Duration `mapstructure:"action_duration"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("ws_path", "/ws")
	v.SetDefault("dial_timeout", "10s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)

	v.SetDefault("sim.host", "0.0.0.0")
	v.SetDefault("sim.port", 8080)
	v.SetDefault("sim.rate_limit", 10.0)
	v.SetDefault("sim.rate_burst", 5)
	v.SetDefault("sim.action_duration", "200ms")
	v.SetDefault("sim.ping_period", "54s")
}

// Load reads config/config.<CONFIG_ENV>.yaml over the defaults, then
// REMOTE_* environment variables, then any flags set in fs.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileName = path
	}

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("REMOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("ws_path", cfg.WSPath).Msg("config")
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.Sim.Port <= 0 || c.Sim.Port > 65535 {
		return fmt.Errorf("sim.port out of range: %d", c.Sim.Port)
	}
	if !strings.HasPrefix(c.WSPath, "/") {
		return fmt.Errorf("ws_path must start with /: %q", c.WSPath)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send_buffer must be positive: %d", c.SendBuffer)
	}
	return nil
}
