package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config drives one analysis run. Values come from defaults, an optional
// YAML file, and CO2_* environment variables, in increasing precedence.
type Config struct {
	Data struct {
		URL  string `mapstructure:"url"`
		File string `mapstructure:"file"` // local file overrides the URL when set
	} `mapstructure:"data"`

	Split struct {
		Year int `mapstructure:"year"` // holdout starts in January of this year; 0 disables
	} `mapstructure:"split"`

	Model struct {
		P      int `mapstructure:"p"`
		D      int `mapstructure:"d"`
		Q      int `mapstructure:"q"`
		SP     int `mapstructure:"sp"`
		SD     int `mapstructure:"sd"`
		SQ     int `mapstructure:"sq"`
		Period int `mapstructure:"period"`

		// BoxCox is "none", "auto", or a fixed lambda such as "0" or "0.5".
		BoxCox string `mapstructure:"boxcox"`
	} `mapstructure:"model"`

	Forecast struct {
		Horizon    int     `mapstructure:"horizon"`
		Confidence float64 `mapstructure:"confidence"`
	} `mapstructure:"forecast"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "console" or "json"
	} `mapstructure:"logging"`

	Report struct {
		Output string `mapstructure:"output"` // "-" writes to stdout
	} `mapstructure:"report"`
}

// LoadConfig loads configuration. When configPath is empty the loader looks
// for config.yaml in the working directory and falls back to defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("CO2")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing default config file is fine; an explicitly given one is not.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.url", "https://gml.noaa.gov/webdata/ccgg/trends/co2/co2_mm_mlo.txt")
	v.SetDefault("data.file", "")

	v.SetDefault("split.year", 2020)

	v.SetDefault("model.p", 1)
	v.SetDefault("model.d", 1)
	v.SetDefault("model.q", 1)
	v.SetDefault("model.sp", 0)
	v.SetDefault("model.sd", 1)
	v.SetDefault("model.sq", 1)
	v.SetDefault("model.period", 12)
	v.SetDefault("model.boxcox", "none")

	v.SetDefault("forecast.horizon", 24)
	v.SetDefault("forecast.confidence", 0.95)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("report.output", "-")
}

// Validate checks the configuration for obvious mistakes before any data is
// fetched.
func (c *Config) Validate() error {
	if c.Data.URL == "" && c.Data.File == "" {
		return fmt.Errorf("either data.url or data.file must be set")
	}
	if c.Forecast.Horizon < 1 {
		return fmt.Errorf("forecast.horizon must be at least 1, got %d", c.Forecast.Horizon)
	}
	if c.Forecast.Confidence <= 0 || c.Forecast.Confidence >= 1 {
		return fmt.Errorf("forecast.confidence must be in (0, 1), got %v", c.Forecast.Confidence)
	}
	if _, err := c.boxCoxLambda(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// boxCoxLambda parses the model.boxcox setting: "none", "auto", or a fixed
// numeric lambda. The boolean results report which mode applies.
func (c *Config) boxCoxLambda() (mode boxCoxMode, err error) {
	switch s := strings.ToLower(strings.TrimSpace(c.Model.BoxCox)); s {
	case "", "none":
		return boxCoxMode{}, nil
	case "auto":
		return boxCoxMode{auto: true}, nil
	default:
		lambda, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return boxCoxMode{}, fmt.Errorf("model.boxcox must be none, auto, or a number, got %q", c.Model.BoxCox)
		}
		return boxCoxMode{fixed: true, lambda: lambda}, nil
	}
}

type boxCoxMode struct {
	auto   bool
	fixed  bool
	lambda float64
}
