package proxy

import (
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"

	"github.com/neosperience/serverless-starter/httperror"
	"github.com/neosperience/serverless-starter/schema"
)

var (
	contentTypeRegexp = regexp.MustCompile(`^application/json`)
	uuidRegexp        = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// Principal is the caller identity an authorizer placed in the request
// context, decoded and validated.
type Principal map[string]interface{}

// Extractor converts the caller supplied parts of an api gateway proxy
// request into validated values. Every failure is an *httperror.Error and no
// value is returned unless all checks passed.
type Extractor struct {
	validator schema.Validator
}

// NewExtractor returns an Extractor validating documents with v. A nil v
// falls back to a JSON Schema validator.
func NewExtractor(v schema.Validator) *Extractor {
	if v == nil {
		v = schema.NewJSONSchemaValidator()
	}

	return &Extractor{validator: v}
}

// ExtractResource decodes the request body and validates it against s.
//
// An empty body is answered with 400, a Content-Type other than
// application/json with 415, malformed json with 400 and a document that does
// not conform to s with 422 listing every violation as a cause.
func (x *Extractor) ExtractResource(request events.APIGatewayProxyRequest, s *schema.Schema) (interface{}, error) {
	body, err := x.resourceBody(request)
	if err != nil {
		return nil, err
	}

	if s == nil {
		return nil, httperror.New(httperror.StatusInternalServerError, MsgResourceSchemaMissing)
	}

	resource, err := parseJSON(body)
	if err != nil {
		return nil, httperror.New(httperror.StatusBadRequest, MsgJSONIsUnparsable+err.Error(), err.Error())
	}

	if ok, violations := x.validator.Validate(s, resource); !ok {
		return nil, httperror.New(httperror.StatusUnprocessableEntity, MsgJSONIsInvalid+s.String(), violations)
	}

	return resource, nil
}

// DecodeResource is like ExtractResource but decodes the validated body into
// a T.
func DecodeResource[T any](x *Extractor, request events.APIGatewayProxyRequest, s *schema.Schema) (T, error) {
	var out T

	if _, err := x.ExtractResource(request, s); err != nil {
		return out, err
	}

	body, err := requestBody(request)
	if err != nil {
		return out, httperror.New(httperror.StatusBadRequest, MsgJSONIsUnparsable+err.Error(), err.Error())
	}

	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return out, httperror.New(httperror.StatusUnprocessableEntity, MsgJSONIsInvalid+s.String(), err.Error())
	}

	return out, nil
}

func (x *Extractor) resourceBody(request events.APIGatewayProxyRequest) (string, error) {
	if request.Body == "" {
		return "", httperror.New(httperror.StatusBadRequest, MsgBodyIsNull)
	}

	contentType, ok := request.Headers[HeaderContentType]
	if !ok || !contentTypeRegexp.MatchString(contentType) {
		return "", httperror.New(httperror.StatusUnsupportedMediaType, MsgBodyNotJSON)
	}

	body, err := requestBody(request)
	if err != nil {
		cause := errors.Cause(err).Error()
		return "", httperror.New(httperror.StatusBadRequest, MsgJSONIsUnparsable+cause, cause)
	}

	return body, nil
}

// ExtractPrincipal decodes the principal the authorizer stored as a json
// string in the request context and validates it against s. Every failure is
// answered with 401.
func (x *Extractor) ExtractPrincipal(request events.APIGatewayProxyRequest, s *schema.Schema) (Principal, error) {
	value, err := x.principal(request, s)
	if err != nil {
		return nil, err
	}

	principal, ok := value.(map[string]interface{})
	if !ok {
		return nil, httperror.New(httperror.StatusUnauthorized, MsgPrincipalInvalid, "principal is not an object")
	}

	return Principal(principal), nil
}

// DecodePrincipal is like ExtractPrincipal but decodes the validated
// principal into a T.
func DecodePrincipal[T any](x *Extractor, request events.APIGatewayProxyRequest, s *schema.Schema) (T, error) {
	var out T

	if _, err := x.principal(request, s); err != nil {
		return out, err
	}

	raw := request.RequestContext.Authorizer[AuthorizerPrincipalID].(string)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, httperror.New(httperror.StatusUnauthorized, MsgPrincipalInvalid, err.Error())
	}

	return out, nil
}

func (x *Extractor) principal(request events.APIGatewayProxyRequest, s *schema.Schema) (interface{}, error) {
	if s == nil {
		return nil, httperror.New(httperror.StatusUnauthorized, MsgPrincipalSchemaMissing)
	}

	authorizer := request.RequestContext.Authorizer
	if authorizer == nil {
		return nil, httperror.New(httperror.StatusUnauthorized, MsgPrincipalMissing)
	}

	raw, ok := authorizer[AuthorizerPrincipalID]
	if !ok || raw == nil || raw == "" {
		return nil, httperror.New(httperror.StatusUnauthorized, MsgPrincipalMissing)
	}

	principalID, ok := raw.(string)
	if !ok {
		return nil, httperror.New(httperror.StatusUnauthorized, MsgPrincipalNotString)
	}

	principal, err := parseJSON(principalID)
	if err != nil {
		return nil, httperror.New(httperror.StatusUnauthorized, MsgPrincipalInvalid, err.Error())
	}

	if ok, violations := x.validator.Validate(s, principal); !ok {
		return nil, httperror.New(httperror.StatusUnauthorized, MsgPrincipalInvalid, violations)
	}

	return principal, nil
}

// ExtractUUID returns the lowercased uuid path parameter. A missing or
// malformed identifier is answered with 400.
func (x *Extractor) ExtractUUID(request events.APIGatewayProxyRequest) (string, error) {
	id, ok := request.PathParameters[ParamUUID]
	if !ok {
		return "", httperror.New(httperror.StatusBadRequest, MsgUUIDMissing)
	}

	id = strings.ToLower(id)
	if !uuidRegexp.MatchString(id) {
		return "", httperror.New(httperror.StatusBadRequest, MsgUUIDNotMatch)
	}

	return id, nil
}

// ExtractLocale returns the locales the caller prefers. The locale query
// parameter wins over the Accept-Language header. When neither is present, or
// the chosen one holds no locale at all, nil is returned without error.
func (x *Extractor) ExtractLocale(request events.APIGatewayProxyRequest) (Locales, error) {
	if value, ok := request.QueryStringParameters[ParamLocale]; ok {
		return localesFrom(value, MsgLocaleFormat)
	}

	if value, ok := request.Headers[HeaderAcceptLanguage]; ok {
		return localesFrom(value, MsgAcceptHeaderFormat)
	}

	return nil, nil
}

func localesFrom(value, message string) (Locales, error) {
	locales := ParseLocales(value)
	if !locales.Valid() {
		return nil, httperror.New(httperror.StatusBadRequest, message, value)
	}

	if len(locales) == 0 {
		return nil, nil
	}

	return locales, nil
}

// Method returns the http method of the request.
func (x *Extractor) Method(request events.APIGatewayProxyRequest) string {
	return Method(request)
}

// ResourceURL returns the url the caller used to reach the function.
func (x *Extractor) ResourceURL(request events.APIGatewayProxyRequest) string {
	return ResourceURL(request)
}

// ResolveResourceURL returns the url of the resource id below the requested
// url.
func (x *Extractor) ResolveResourceURL(request events.APIGatewayProxyRequest, id string) string {
	return ResolveResourceURL(request, id)
}

// WasModifiedSince reports whether the request If-Modified-Since header is
// older than lastModified.
func (x *Extractor) WasModifiedSince(request events.APIGatewayProxyRequest, lastModified time.Time) (bool, error) {
	return WasModifiedSince(lastModified, request.Headers[HeaderIfModifiedSince])
}

// parseJSON decodes a single json document keeping number precision.
func parseJSON(text string) (interface{}, error) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var v interface{}
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}

	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("invalid character after top-level value")
	}

	return v, nil
}
