// Package logging builds the zap loggers used by the functions.
package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encodings supported by New.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// Config selects the level and format of the logger.
type Config struct {
	Level       string
	Encoding    string
	Development bool
}

// DefaultConfig is the configuration used when none is provided: info level
// json lines, which CloudWatch stores as they are.
func DefaultConfig() Config {
	return Config{Level: "info", Encoding: EncodingJSON}
}

// New returns a logger writing to stderr as cfg describes.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoding, err := parseEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = encoding
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed building logger")
	}

	return logger, nil
}

// Must is like New but panics on error.
func Must(cfg Config) *zap.Logger {
	logger, err := New(cfg)
	if err != nil {
		panic(err)
	}

	return logger
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}

	level, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel, errors.Wrapf(err, "invalid log level '%s'", s)
	}

	return level, nil
}

func parseEncoding(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingConsole:
		return EncodingConsole, nil
	default:
		return "", errors.Errorf("invalid log encoding '%s'", s)
	}
}
