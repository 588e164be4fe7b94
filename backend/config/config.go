// Package config loads the service configuration from a YAML file and
// applies defaults so a minimal file is enough to boot.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"seatrack/backend/forecast"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Forecast ForecastConfig `yaml:"forecast"`
	Region   RegionConfig   `yaml:"region"`
	Data     DataConfig     `yaml:"data"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	EnableAdmin bool   `yaml:"enable_admin"`
}

type ForecastConfig struct {
	Trials          int     `yaml:"trials"`
	HoursAhead      float64 `yaml:"hours_ahead"`
	StepHours       float64 `yaml:"step_hours"`
	HeadingSigmaDeg float64 `yaml:"heading_sigma_deg"`
	SpeedSigmaFrac  float64 `yaml:"speed_sigma_frac"`
	MinSpeedKn      float64 `yaml:"min_speed_kn"`
	MaxSpeedKn      float64 `yaml:"max_speed_kn"`
	Seed            uint64  `yaml:"seed"`
}

type RegionConfig struct {
	MinLat     float64      `yaml:"min_lat"`
	MaxLat     float64      `yaml:"max_lat"`
	MinLon     float64      `yaml:"min_lon"`
	MaxLon     float64      `yaml:"max_lon"`
	Exclusions []RectConfig `yaml:"exclusions"`
}

type RectConfig struct {
	Name   string  `yaml:"name"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
}

type DataConfig struct {
	CSVPath string   `yaml:"csv_path"`
	Vessels []string `yaml:"vessels"`
}

// Load reads and validates the YAML file at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	_ = cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	opts := forecast.DefaultOptions()
	if c.Forecast.Trials == 0 {
		c.Forecast.Trials = opts.Trials
	}
	if c.Forecast.Trials < 0 {
		return fmt.Errorf("forecast.trials must be positive")
	}
	if c.Forecast.HoursAhead == 0 {
		c.Forecast.HoursAhead = opts.HoursAhead
	}
	if c.Forecast.StepHours == 0 {
		c.Forecast.StepHours = opts.StepHours
	}
	if c.Forecast.StepHours < 0 || c.Forecast.HoursAhead < c.Forecast.StepHours {
		return fmt.Errorf("forecast horizon must cover at least one step")
	}
	if c.Forecast.HeadingSigmaDeg == 0 {
		c.Forecast.HeadingSigmaDeg = opts.HeadingSigmaDeg
	}
	if c.Forecast.SpeedSigmaFrac == 0 {
		c.Forecast.SpeedSigmaFrac = opts.SpeedSigmaFrac
	}
	if c.Forecast.MinSpeedKn == 0 {
		c.Forecast.MinSpeedKn = opts.MinSpeedKn
	}
	if c.Forecast.MaxSpeedKn == 0 {
		c.Forecast.MaxSpeedKn = opts.MaxSpeedKn
	}
	if c.Forecast.MaxSpeedKn <= c.Forecast.MinSpeedKn {
		return fmt.Errorf("forecast.max_speed_kn must exceed forecast.min_speed_kn")
	}
	if c.Forecast.Seed == 0 {
		c.Forecast.Seed = opts.Seed
	}

	return nil
}

// Options converts the forecast section into engine options.
func (c ForecastConfig) Options() forecast.Options {
	return forecast.Options{
		Trials:          c.Trials,
		HoursAhead:      c.HoursAhead,
		StepHours:       c.StepHours,
		HeadingSigmaDeg: c.HeadingSigmaDeg,
		SpeedSigmaFrac:  c.SpeedSigmaFrac,
		MinSpeedKn:      c.MinSpeedKn,
		MaxSpeedKn:      c.MaxSpeedKn,
		Seed:            c.Seed,
	}
}

// Navigator builds the navigability model from the region section, falling
// back to the built-in South China Sea approximation when unset.
func (c RegionConfig) Navigator() forecast.Navigator {
	if c.MinLat == 0 && c.MaxLat == 0 && c.MinLon == 0 && c.MaxLon == 0 {
		return forecast.NewSouthChinaSeaNavigator()
	}
	nav := forecast.RegionNavigator{
		Region: forecast.Rect{Name: "configured", MinLat: c.MinLat, MaxLat: c.MaxLat, MinLon: c.MinLon, MaxLon: c.MaxLon},
	}
	for _, r := range c.Exclusions {
		nav.Exclusions = append(nav.Exclusions, forecast.Rect{
			Name: r.Name, MinLat: r.MinLat, MaxLat: r.MaxLat, MinLon: r.MinLon, MaxLon: r.MaxLon,
		})
	}
	return nav
}
