package lambdautils

import (
	"context"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"
)

// LambdaMetaData stored details about the current lambda context.
type LambdaMetaData struct {
	FunctionName    string
	FunctionVersion string
	LogGroupName    string
	LogStreamName   string
	MemoryLimitInMB int
	Context         *lambdacontext.LambdaContext
}

// GetLambdaMetaData returns MetaData extracted from the current lambda context.
func GetLambdaMetaData(ctx context.Context) LambdaMetaData {
	lm := LambdaMetaData{
		FunctionName:    lambdacontext.FunctionName,
		FunctionVersion: lambdacontext.FunctionVersion,
		LogGroupName:    lambdacontext.LogGroupName,
		LogStreamName:   lambdacontext.LogStreamName,
		MemoryLimitInMB: lambdacontext.MemoryLimitInMB,
	}

	lm.Context, _ = lambdacontext.FromContext(ctx)
	return lm
}

// RequestID returns the aws request id of the invocation, empty outside of
// lambda.
func (lm LambdaMetaData) RequestID() string {
	if lm.Context == nil {
		return ""
	}

	return lm.Context.AwsRequestID
}

// Fields returns the metadata as log fields. Empty values are left out.
func (lm LambdaMetaData) Fields() []zap.Field {
	fields := make([]zap.Field, 0, 3)

	if lm.FunctionName != "" {
		fields = append(fields, zap.String("function", lm.FunctionName))
	}
	if lm.FunctionVersion != "" {
		fields = append(fields, zap.String("version", lm.FunctionVersion))
	}
	if id := lm.RequestID(); id != "" {
		fields = append(fields, zap.String("requestId", id))
	}

	return fields
}

// Logger returns base annotated with the metadata of the invocation ctx
// belongs to.
func Logger(ctx context.Context, base *zap.Logger) *zap.Logger {
	return base.With(GetLambdaMetaData(ctx).Fields()...)
}

// NewLocalContext returns a context carrying a lambda context for requestID,
// for running handlers outside of lambda.
func NewLocalContext(ctx context.Context, requestID string) context.Context {
	arn := "arn:aws:lambda:local:000000000000:function"
	if lambdacontext.FunctionName != "" {
		arn += ":" + lambdacontext.FunctionName
	}

	return lambdacontext.NewContext(ctx, &lambdacontext.LambdaContext{
		AwsRequestID:       requestID,
		InvokedFunctionArn: arn,
	})
}
