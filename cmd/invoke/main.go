// Command invoke runs a proxy event through the functions locally and prints
// the response.
//
//	invoke [--event file] [--env name] [--config-dir dir]...
//
// The event is read from file, or from stdin when file is "-". Without
// --event a GET request for the greeting is used.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/neosperience/serverless-starter/app"
	"github.com/neosperience/serverless-starter/config"
	"github.com/neosperience/serverless-starter/lambdautils"
	"github.com/neosperience/serverless-starter/proxy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type invokeOptions struct {
	event      string
	env        string
	configDirs []string
	requestID  string
}

func newRootCmd() *cobra.Command {
	opts := &invokeOptions{}

	cmd := &cobra.Command{
		Use:           "invoke",
		Short:         "Run a proxy event through the functions locally",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInvoke(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.event, "event", "e", "", `event file, "-" reads stdin`)
	cmd.Flags().StringVar(&opts.env, "env", "", "configuration environment, defaults to $"+config.EnvVar)
	cmd.Flags().StringSliceVar(&opts.configDirs, "config-dir", config.DefaultPaths, "directories searched for configuration files")
	cmd.Flags().StringVar(&opts.requestID, "request-id", "", "aws request id of the invocation, random when empty")

	return cmd
}

func runInvoke(cmd *cobra.Command, opts *invokeOptions) error {
	request, err := readEvent(cmd.InOrStdin(), opts.event)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFrom(opts.env, opts.configDirs...)
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Logger().Sync() }()

	requestID := opts.requestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx := lambdautils.NewLocalContext(cmd.Context(), requestID)

	response, err := a.Handle(ctx, request)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed encoding response")
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func readEvent(stdin io.Reader, name string) (events.APIGatewayProxyRequest, error) {
	var request events.APIGatewayProxyRequest

	if name == "" {
		return defaultEvent(), nil
	}

	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return request, errors.Wrapf(err, "failed reading event %s", name)
	}

	if err := json.Unmarshal(data, &request); err != nil {
		return request, errors.Wrapf(err, "failed decoding event %s", name)
	}

	return request, nil
}

func defaultEvent() events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		Resource:   app.HelloPath,
		Path:       app.HelloPath,
		HTTPMethod: "GET",
		Headers: map[string]string{
			proxy.HeaderForwardedProto: "http",
			proxy.HeaderForwardedPort:  "80",
			proxy.HeaderHost:           "localhost",
		},
		PathParameters: map[string]string{},
		RequestContext: events.APIGatewayProxyRequestContext{
			Stage:        "local",
			HTTPMethod:   "GET",
			ResourcePath: app.HelloPath,
		},
	}
}
