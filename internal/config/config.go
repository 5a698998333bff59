package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Map     MapConfig     `yaml:"map" mapstructure:"map"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig selects the geocoding provider and its request pacing.
type GeocodeConfig struct {
	Provider     string `yaml:"provider" mapstructure:"provider"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	Email        string `yaml:"email" mapstructure:"email"`
	NominatimURL string `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	GoogleKey    string `yaml:"google_key" mapstructure:"google_key"`
	MinDelayMS   int    `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// MinDelay returns the dispatch floor as a duration.
func (g GeocodeConfig) MinDelay() time.Duration {
	return time.Duration(g.MinDelayMS) * time.Millisecond
}

// Timeout returns the per-request HTTP timeout.
func (g GeocodeConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecs) * time.Second
}

// MapConfig configures the rendered point map.
type MapConfig struct {
	Zoom        int    `yaml:"zoom" mapstructure:"zoom"`
	TileURL     string `yaml:"tile_url" mapstructure:"tile_url"`
	Attribution string `yaml:"attribution" mapstructure:"attribution"`
}

// ServerConfig configures the upload server.
type ServerConfig struct {
	Port             int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB      int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	MaxResults       int      `yaml:"max_results" mapstructure:"max_results"`
	UploadsPerMinute int      `yaml:"uploads_per_minute" mapstructure:"uploads_per_minute"`
	CORSOrigins      []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOCODER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("geocode.provider", "nominatim")
	v.SetDefault("geocode.user_agent", "sells-group-geocoder/1.0")
	v.SetDefault("geocode.email", "")
	v.SetDefault("geocode.nominatim_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("geocode.google_key", "")
	v.SetDefault("geocode.min_delay_ms", 1000)
	v.SetDefault("geocode.timeout_secs", 30)
	v.SetDefault("map.zoom", 10)
	v.SetDefault("map.tile_url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", "&copy; OpenStreetMap contributors")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.max_results", 50)
	v.SetDefault("server.uploads_per_minute", 6)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by mode ("run", "inspect" or
// "serve") and reports every problem at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "inspect":
		return nil
	case "run", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch strings.ToLower(c.Geocode.Provider) {
	case "nominatim", "":
		if c.Geocode.UserAgent == "" {
			errs = append(errs, "geocode.user_agent is required for nominatim")
		}
	case "google":
		if c.Geocode.GoogleKey == "" {
			errs = append(errs, "geocode.google_key is required for google")
		}
	case "census":
	default:
		errs = append(errs, "geocode.provider must be one of nominatim, google, census")
	}

	if c.Geocode.MinDelayMS < 1000 {
		errs = append(errs, "geocode.min_delay_ms must be >= 1000")
	}
	if c.Geocode.TimeoutSecs <= 0 {
		errs = append(errs, "geocode.timeout_secs must be > 0")
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 19 {
		errs = append(errs, "map.zoom must be between 0 and 19")
	}

	if mode == "serve" {
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.MaxUploadMB <= 0 {
			errs = append(errs, "server.max_upload_mb must be > 0")
		}
		if c.Server.MaxResults <= 0 {
			errs = append(errs, "server.max_results must be > 0")
		}
		if c.Server.UploadsPerMinute <= 0 {
			errs = append(errs, "server.uploads_per_minute must be > 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
