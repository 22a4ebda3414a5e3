package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Telegram struct {
		Token      string
		TimeoutSec int `mapstructure:"timeout_sec"`
	} `mapstructure:"telegram"`

	Display struct {
		Precision int
	} `mapstructure:"display"`
}

// Load читает YAML-конфиг (если path не пустой) и переопределения из ENV (APP_*).
// Перед этим подгружается .env из рабочего каталога, если он есть.
func Load(path string) (Config, error) {
	var c Config
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, err
	}

	v := viper.New()
	v.SetDefault("app.env", "prod")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.timeout_sec", 60)
	v.SetDefault("display.precision", 4)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, err
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if c.Display.Precision < 0 {
		c.Display.Precision = 0
	}
	return c, nil
}
