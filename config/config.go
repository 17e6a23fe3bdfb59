package config

import (
	"fmt"
	"os"

	"hintdns/log"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v2"
)

// Config is the whole server configuration
type Config struct {
	Port          uint16         `yaml:"port" default:"5353"`
	HTTPPort      uint16         `yaml:"httpPort" default:"0"`
	ZoneFile      string         `yaml:"zoneFile" default:"zone"`
	RootHintsFile string         `yaml:"rootHintsFile" default:"root.hints"`
	Resolver      ResolverConfig `yaml:"resolver"`
	Caching       CachingConfig  `yaml:"caching"`
	Metrics       MetricsConfig  `yaml:"metrics"`
	LogLevel      string         `yaml:"logLevel" default:"info"`
	LogFormat     string         `yaml:"logFormat" default:"text"`
	LogTimestamp  bool           `yaml:"logTimestamp" default:"true"`
}

// ResolverConfig configuration of the iterative resolver
type ResolverConfig struct {
	// QueryTimeout bounds the wait for a single upstream response.
	QueryTimeout Duration `yaml:"queryTimeout" default:"2s"`
}

// CachingConfig configuration of the shared record cache
type CachingConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	File    string `yaml:"file" default:"cache.json"`
	// TTLOverride replaces the TTL of every record learned from the
	// network before it is cached (if > 0).
	TTLOverride uint32 `yaml:"ttlOverride" default:"0"`
}

// MetricsConfig configuration for prometheus metrics endpoint
type MetricsConfig struct {
	Enable bool   `yaml:"enable" default:"false"`
	Path   string `yaml:"path" default:"/metrics"`
}

// NewConfig creates new config from YAML file
func NewConfig(path string, mandatory bool) Config {
	cfg := Config{}
	if err := defaults.Set(&cfg); err != nil {
		log.Log().Fatal("can't apply default values: ", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mandatory {
			// config file does not exist, use default config
			return cfg
		}

		log.Log().Fatal("can't read config file: ", err)
	}

	err = unmarshalConfig(data, &cfg)
	if err != nil {
		log.Log().Fatal(err)
	}

	return cfg
}

func unmarshalConfig(data []byte, cfg *Config) error {
	err := yaml.UnmarshalStrict(data, cfg)
	if err != nil {
		return fmt.Errorf("wrong file structure: %w", err)
	}

	if cfg.LogFormat != log.FormatText && cfg.LogFormat != log.FormatJSON {
		return fmt.Errorf("LogFormat should be '%s' or '%s'", log.FormatText, log.FormatJSON)
	}

	return nil
}
