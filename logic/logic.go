// Package logic holds the business logic the functions expose.
package logic

import (
	"context"

	"go.uber.org/zap"
)

// Logic implements the operations the lambda mappers call.
type Logic struct {
	logger *zap.Logger
}

// New returns a Logic logging to logger.
func New(logger *zap.Logger) *Logic {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Logic{logger: logger}
}

// SayHello returns the greeting.
func (l *Logic) SayHello(ctx context.Context) (string, error) {
	l.logger.Debug("Logic/sayHello")

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return "Hello World", nil
}
