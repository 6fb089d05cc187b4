package proxy

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// RouteContext contains all the request information for a route when matched.
type RouteContext struct {
	Context context.Context
	Request events.APIGatewayProxyRequest
	Params  map[string]string
}

// Body returns a string representation of the request body
func (ctx *RouteContext) Body() (string, error) {
	return requestBody(ctx.Request)
}

func requestBody(request events.APIGatewayProxyRequest) (string, error) {
	if request.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return "", errors.Wrapf(err, "unable to decode request body for %s %s", request.HTTPMethod, request.Path)
		}

		return string(b), nil
	}

	return request.Body, nil
}
