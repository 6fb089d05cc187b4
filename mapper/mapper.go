// Package mapper adapts api gateway proxy events to the business logic and
// its results back to proxy responses.
package mapper

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neosperience/serverless-starter/httperror"
	"github.com/neosperience/serverless-starter/proxy"
	"github.com/neosperience/serverless-starter/schema"
)

// Greeter is the part of the business logic the mapper exposes.
type Greeter interface {
	SayHello(ctx context.Context) (string, error)
}

// LambdaMapper turns requests into logic calls. Every failure, panics
// included, is answered with an error response; its methods never return an
// error.
type LambdaMapper struct {
	logger    *zap.Logger
	greeter   Greeter
	extractor *proxy.Extractor
	principal *schema.Schema
}

// New returns a LambdaMapper. When principal is not nil callers must carry an
// authorizer principal conforming to it.
func New(logger *zap.Logger, greeter Greeter, extractor *proxy.Extractor, principal *schema.Schema) *LambdaMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = proxy.NewExtractor(nil)
	}

	return &LambdaMapper{
		logger:    logger,
		greeter:   greeter,
		extractor: extractor,
		principal: principal,
	}
}

// SayHello answers with the greeting of the logic.
func (m *LambdaMapper) SayHello(ctx context.Context, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	m.logger.Debug("LambdaMapper/sayHello")

	result, err := try(func() (interface{}, error) {
		if err := m.authenticate(request); err != nil {
			return nil, err
		}

		return m.greeter.SayHello(ctx)
	})

	return m.respond(request, result, err)
}

func (m *LambdaMapper) authenticate(request events.APIGatewayProxyRequest) error {
	if m.principal == nil {
		return nil
	}

	principal, err := m.extractor.ExtractPrincipal(request, m.principal)
	if err != nil {
		return err
	}

	m.logger.Debug("principal extracted", zap.Any("principal", principal))
	return nil
}

func (m *LambdaMapper) respond(request events.APIGatewayProxyRequest, result interface{}, err error) events.APIGatewayProxyResponse {
	if err == nil {
		return m.extractor.Success(request, result)
	}

	status := httperror.StatusCode(err)
	fields := []zap.Field{
		zap.String("method", request.HTTPMethod),
		zap.String("path", request.Path),
		zap.Int("status", status),
		zap.Error(err),
	}

	if status >= httperror.StatusInternalServerError {
		m.logger.Error("request failed", fields...)
	} else {
		m.logger.Info("request rejected", fields...)
	}

	return m.extractor.Error(request, err)
}

// try runs fn, turning a panic into an error.
func try(fn func() (interface{}, error)) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = errors.Wrap(rerr, "recovered from panic")
			} else {
				err = errors.Errorf("recovered from panic: %v", r)
			}
		}
	}()

	return fn()
}

// Route adapts a mapper method to a proxy route handler.
func Route(fn func(context.Context, events.APIGatewayProxyRequest) events.APIGatewayProxyResponse) proxy.RouteHandler {
	return func(rctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
		return fn(rctx.Context, rctx.Request), nil
	}
}
