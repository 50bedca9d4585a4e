package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort      int    `mapstructure:"APP_PORT"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	ProviderURL  string `mapstructure:"PROVIDER_URL"`
	ProviderKey  string `mapstructure:"PROVIDER_API_KEY"`
	MainModel    string `mapstructure:"MAIN_MODEL"`
	SupportModel string `mapstructure:"SUPPORT_MODEL"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "/data/prism.db")
	viper.SetDefault("PROVIDER_URL", "http://localhost:11434/v1")
	viper.SetDefault("PROVIDER_API_KEY", "")
	viper.SetDefault("MAIN_MODEL", "gemini-2.5-flash")
	viper.SetDefault("SUPPORT_MODEL", "gemini-2.5-flash-lite")
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
