package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/arloliu/fitstream/decoder"
	"github.com/arloliu/fitstream/internal/log"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys,
// e.g. FITDUMP_DECODE_STRICT=true or FITDUMP_LOG_LEVEL=debug.
const EnvPrefix = "FITDUMP"

// Config is the fitdump configuration.
type Config struct {
	Log    log.Config   `mapstructure:"log"`
	Decode DecodeConfig `mapstructure:"decode"`
	Output OutputConfig `mapstructure:"output"`
}

// DecodeConfig maps onto decoder options.
type DecodeConfig struct {
	Strict    bool `mapstructure:"strict"`
	MaxFields int  `mapstructure:"max_fields"`
	HeaderCRC bool `mapstructure:"header_crc"`
}

// OutputConfig selects how decoded content is printed.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Options returns the decoder options for this configuration.
func (c DecodeConfig) Options() []decoder.Option {
	return []decoder.Option{
		decoder.WithStrict(c.Strict),
		decoder.WithMaxFields(c.MaxFields),
		decoder.WithHeaderCRCCheck(c.HeaderCRC),
	}
}

// flagKeys binds command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file.path",
	"strict":     "decode.strict",
	"max-fields": "decode.max_fields",
	"header-crc": "decode.header_crc",
	"format":     "output.format",
}

// LoadConfig merges defaults, the optional YAML file at path, FITDUMP_ environment
// variables and changed flags, in increasing order of precedence.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Log.File.Path != "" {
		cfg.Log.File.Enabled = true
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 10)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age_days", 7)
	v.SetDefault("log.file.compress", false)

	v.SetDefault("decode.strict", false)
	v.SetDefault("decode.max_fields", 255)
	v.SetDefault("decode.header_crc", true)

	v.SetDefault("output.format", "text")
}
