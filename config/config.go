// Package config loads the function configuration with viper.
//
// The base file config.{yaml,json} is read first and the file of the
// selected environment, config.<env>.{yaml,json}, is merged over it.
// Environment variables prefixed with APP_ override both, with "." in keys
// replaced by "_" (APP_LOGGER_LEVEL sets logger.level). The settled
// configuration is checked against an embedded JSON schema.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/neosperience/serverless-starter/logging"
	"github.com/neosperience/serverless-starter/schema"
)

// EnvVar names the environment variable selecting the configuration
// environment when none is given explicitly.
const EnvVar = "ENV"

const envPrefix = "APP"

// DefaultPaths are the directories searched for configuration files.
var DefaultPaths = []string{"./config", ".", "/etc/serverless-starter"}

//go:embed schema.json
var schemaDocument []byte

// Config holds the function configuration.
type Config struct {
	Environment string        `mapstructure:"environment" json:"environment"`
	Logger      LoggerConfig  `mapstructure:"logger" json:"logger"`
	Schemas     SchemasConfig `mapstructure:"schemas" json:"schemas"`
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" json:"level"`
	Encoding    string `mapstructure:"encoding" json:"encoding"`
	Development bool   `mapstructure:"development" json:"development"`
}

// SchemasConfig points at the schema documents the functions validate
// against.
type SchemasConfig struct {
	// Principal is the path of the principal schema. Callers are not
	// authenticated when it is empty.
	Principal string `mapstructure:"principal" json:"principal"`
}

// Logging returns the logger configuration in the form logging.New takes.
func (c LoggerConfig) Logging() logging.Config {
	return logging.Config{
		Level:       c.Level,
		Encoding:    c.Encoding,
		Development: c.Development,
	}
}

// ValidationError reports a configuration that does not conform to the
// configuration schema.
type ValidationError struct {
	Violations []schema.Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Path, v.Message))
	}

	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Load loads the configuration of env from DefaultPaths. An empty env falls
// back to the ENV environment variable.
func Load(env string) (*Config, error) {
	return LoadFrom(env, DefaultPaths...)
}

// LoadFrom is like Load but searches paths for configuration files.
//
// A missing base file is not an error. A missing file for a named
// environment is.
func LoadFrom(env string, paths ...string) (*Config, error) {
	if env == "" {
		env = os.Getenv(EnvVar)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed reading config file")
		}
	}

	if env != "" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed reading config file for environment '%s'", env)
		}
		v.Set("environment", env)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed decoding config")
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cfg against the configuration schema.
func Validate(cfg *Config) error {
	s, err := schema.Parse("config/schema.json", schemaDocument)
	if err != nil {
		return err
	}

	b, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed encoding config")
	}

	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.UseNumber()

	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return errors.Wrap(err, "failed decoding config")
	}

	if ok, violations := schema.NewJSONSchemaValidator().Validate(s, doc); !ok {
		return &ValidationError{Violations: violations}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", logging.EncodingJSON)
	v.SetDefault("logger.development", false)
	v.SetDefault("schemas.principal", "")
}
