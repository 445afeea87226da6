package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppConfig struct {
	App struct {
		Name string `mapstructure:"NAME"`
		Port string `mapstructure:"PORT"`
	}

	DATABASE struct {
		Postgres struct {
			DSN string `mapstructure:"URL"`
		}
		Redis struct {
			Addr     string `mapstructure:"ADDR"`
			Password string `mapstructure:"PASSWORD"`
		}
		Mongo struct {
			Url string `mapstructure:"URL"`
		}
	}

	CHAT struct {
		RadiusMeters       float64 `mapstructure:"RADIUS_METERS"`
		StaleWindowMinutes int     `mapstructure:"STALE_WINDOW_MINUTES"`
		HistoryLimit       int     `mapstructure:"HISTORY_LIMIT"`
	}

	JWT struct {
		PrivateKeyPath string `mapstructure:"PRIVATE_KEY_PATH"`
		PublicKeyPath  string `mapstructure:"PUBLIC_KEY_PATH"`
	}
}

// StaleWindow is the maximum presence age for a user to still count as active.
func (c *AppConfig) StaleWindow() time.Duration {
	return time.Duration(c.CHAT.StaleWindowMinutes) * time.Minute
}

var Conf *AppConfig

func LoadConfig() error {
	viper.SetConfigName("application")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("NEARBYCHAT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("CHAT.RADIUS_METERS", 500.0)
	viper.SetDefault("CHAT.STALE_WINDOW_MINUTES", 3)
	viper.SetDefault("CHAT.HISTORY_LIMIT", 100)
	viper.SetDefault("JWT.PRIVATE_KEY_PATH", "private.pem")
	viper.SetDefault("JWT.PUBLIC_KEY_PATH", "public.pem")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	Conf = &config
	log.Info().Msg("configuration loaded...")
	return nil
}
