package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the base name of the project configuration file.
const FileName = "parcelgen"

// Config represents the parcelgen configuration
type Config struct {
	Schemas            []string  `mapstructure:"schemas"`
	OutputDir          string    `mapstructure:"output_dir"`
	Workers            int       `mapstructure:"workers"`
	ReflectAnnotations []string  `mapstructure:"reflect_annotations"`
	NonNullAnnotations []string  `mapstructure:"non_null_annotations"`
	Log                LogConfig `mapstructure:"log"`

	// File is the configuration file that was read, empty when only defaults
	// and environment variables apply.
	File string `mapstructure:"-"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("schemas", []string{"schema/*.yaml"})
	v.SetDefault("output_dir", "")
	v.SetDefault("workers", 0)
	v.SetDefault("reflect_annotations", []string{"Reflect"})
	v.SetDefault("non_null_annotations", []string{"NonNull", "NotNull", "Nonnull"})
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Load loads the configuration. An explicit path must exist; otherwise
// parcelgen.yaml or parcelgen.yml in dir is used when present.
// PARCELGEN_* environment variables override file values.
func Load(dir, path string) (*Config, error) {
	v := viper.New()
	defaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("PARCELGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.File = v.ConfigFileUsed()

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Root returns the directory relative schema globs and the output directory
// are resolved against: the config file's directory, or dir.
func (c *Config) Root(dir string) string {
	if c.File != "" {
		return filepath.Dir(c.File)
	}
	return dir
}

// SchemaFiles expands the schema globs relative to root. Files are sorted and
// deduplicated; the order is the pass order.
func (c *Config) SchemaFiles(root string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range c.Schemas {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid schema pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no schema files match %s", strings.Join(c.Schemas, ", "))
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath returns the directory the generated file of package pkg is
// written to. Without an output directory it sits next to the schema that
// declares the package's first type.
func (c *Config) OutputPath(root, schemaPath, pkg string) string {
	switch {
	case c.OutputDir == "":
		return filepath.Dir(schemaPath)
	case filepath.IsAbs(c.OutputDir):
		return filepath.Join(c.OutputDir, pkg)
	default:
		return filepath.Join(root, c.OutputDir, pkg)
	}
}

// Logger builds the zap logger described by c. Console output goes to
// stderr; json selects the production encoder.
func (c LogConfig) Logger() (*zap.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	var cfg zap.Config
	if c.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func parseLevel(s string) (zapcore.Level, error) {
	var level zapcore.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Schemas) == 0 {
		return fmt.Errorf("schemas must list at least one file or pattern")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got: %d", cfg.Workers)
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got: %s", cfg.Log.Format)
	}
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level is invalid: %w", err)
	}
	return nil
}
