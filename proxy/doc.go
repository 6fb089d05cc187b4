// Package proxy provides utilities for writing aws lambda functions that act as
// aws api gateway (rest) proxy integrations. It turns an
// events.APIGatewayProxyRequest into validated values and always answers with
// a well formed events.APIGatewayProxyResponse.
//
// The Extractor pulls the resource, principal, identifier and locale out of a
// request, failing with an *httperror.Error as soon as something does not
// conform. BuildSuccessResponse and BuildErrorResponse are the only places
// where results and errors become responses: every error, typed or not, is
// classified by httperror.Wrap before it leaves the function.
//
// The router is designed to be as simplistic as possible and is not feature
// rich.
package proxy
