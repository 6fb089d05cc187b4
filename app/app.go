// Package app wires the functions together from their configuration.
package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neosperience/serverless-starter/config"
	"github.com/neosperience/serverless-starter/lambdautils"
	"github.com/neosperience/serverless-starter/logging"
	"github.com/neosperience/serverless-starter/logic"
	"github.com/neosperience/serverless-starter/mapper"
	"github.com/neosperience/serverless-starter/proxy"
	"github.com/neosperience/serverless-starter/schema"
)

// HelloPath is the path the greeting is served on.
const HelloPath = "/say/hello"

// App routes proxy requests to the lambda mappers.
type App struct {
	logger *zap.Logger
	router *proxy.Router
}

// Option customizes an App.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger makes the App log to logger instead of one built from the
// configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New builds an App from cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = &config.Config{Logger: config.LoggerConfig{Level: "info", Encoding: logging.EncodingJSON}}
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = logging.New(cfg.Logger.Logging()); err != nil {
			return nil, err
		}
	}

	principal, err := loadSchema(cfg.Schemas.Principal)
	if err != nil {
		return nil, err
	}

	extractor := proxy.NewExtractor(schema.NewJSONSchemaValidator())
	m := mapper.New(logger.Named("mapper"), logic.New(logger.Named("logic")), extractor, principal)

	router := &proxy.Router{CatchError: proxy.ErrorResponder}
	router.GET(HelloPath, mapper.Route(m.SayHello))

	if !router.Valid() {
		return nil, router.BuildErrors()
	}

	return &App{logger: logger, router: router}, nil
}

// loadSchema reads the schema at path. An empty path yields no schema.
func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return nil, nil
	}

	s, err := schema.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed loading principal schema")
	}

	return s, nil
}

// Handle routes request. Routing errors are answered with error responses so
// the returned error is always nil.
func (a *App) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := lambdautils.Logger(ctx, a.logger)
	logger.Info("handling request",
		zap.String("method", request.HTTPMethod),
		zap.String("path", request.Path),
	)

	response, err := a.router.Route(ctx, request)
	if err != nil {
		return response, err
	}

	logger.Info("request handled", zap.Int("status", response.StatusCode))
	return response, nil
}

// Logger returns the logger of the app.
func (a *App) Logger() *zap.Logger {
	return a.logger
}
