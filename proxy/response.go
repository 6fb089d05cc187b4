package proxy

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"

	"github.com/neosperience/serverless-starter/httperror"
)

// ResponseOption customizes a response built by BuildSuccessResponse or
// BuildErrorResponse.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	statusCode int
	headers    map[string]string
}

// WithStatusCode overrides the response status code.
func WithStatusCode(statusCode int) ResponseOption {
	return func(o *responseOptions) {
		o.statusCode = statusCode
	}
}

// WithHeaders merges headers over the default response headers.
func WithHeaders(headers map[string]string) ResponseOption {
	return func(o *responseOptions) {
		for k, v := range headers {
			o.headers[k] = v
		}
	}
}

func newResponseOptions(statusCode int, opts []ResponseOption) *responseOptions {
	o := &responseOptions{statusCode: statusCode, headers: map[string]string{}}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// BuildSuccessResponse answers request with result encoded as json. The
// status defaults to 200. A result that cannot be encoded is answered with an
// internal server error.
func BuildSuccessResponse(request events.APIGatewayProxyRequest, result interface{}, opts ...ResponseOption) events.APIGatewayProxyResponse {
	o := newResponseOptions(http.StatusOK, opts)

	response, err := buildResponse(result, o.statusCode, o.headers)
	if err != nil {
		return BuildErrorResponse(request, errors.Wrap(err, "failed encoding response body"))
	}

	return response
}

// BuildErrorResponse answers request with err. The error is classified with
// httperror.Wrap and annotated with the request method and url. The status
// defaults to the classified status code instead of a fixed 500, so a not found
// domain error answers 404. WithStatusCode overrides it.
func BuildErrorResponse(request events.APIGatewayProxyRequest, err error, opts ...ResponseOption) events.APIGatewayProxyResponse {
	if err == nil {
		err = errors.New("unknown error")
	}

	annotated := *httperror.Wrap(err)
	annotated.Method = Method(request)
	annotated.Resource = ResourceURL(request)

	o := newResponseOptions(annotated.StatusCode, opts)

	response, encodeErr := buildResponse(&annotated, o.statusCode, o.headers)
	if encodeErr != nil {
		// causes are the only part of the error that may not encode
		annotated.Causes = []interface{}{}
		response, _ = buildResponse(&annotated, o.statusCode, o.headers)
	}

	return response
}

func buildResponse(body interface{}, statusCode int, headers map[string]string) (events.APIGatewayProxyResponse, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	responseHeaders := map[string]string{
		HeaderAllowOrigin: "*",
	}
	for k, v := range headers {
		responseHeaders[k] = v
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    responseHeaders,
		Body:       string(b),
	}, nil
}

// Success is BuildSuccessResponse.
func (x *Extractor) Success(request events.APIGatewayProxyRequest, result interface{}, opts ...ResponseOption) events.APIGatewayProxyResponse {
	return BuildSuccessResponse(request, result, opts...)
}

// Error is BuildErrorResponse.
func (x *Extractor) Error(request events.APIGatewayProxyRequest, err error, opts ...ResponseOption) events.APIGatewayProxyResponse {
	return BuildErrorResponse(request, err, opts...)
}
