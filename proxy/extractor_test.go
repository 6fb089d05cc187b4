package proxy

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neosperience/serverless-starter/httperror"
	"github.com/neosperience/serverless-starter/schema"
)

const personSchema = `{
  "type": "object",
  "properties": {
    "firstName": { "type": "string", "minLength": 1 },
    "lastName": { "type": "string", "minLength": 1 },
    "age": { "type": "integer", "minimum": 0 }
  },
  "required": ["firstName", "lastName"]
}`

const principalSchema = `{
  "type": "object",
  "properties": {
    "sub": { "type": "string" },
    "roles": { "type": "array", "items": { "type": "string" } }
  },
  "required": ["sub"]
}`

type person struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
}

type principal struct {
	Sub   string   `json:"sub"`
	Roles []string `json:"roles"`
}

func mustSchema(t *testing.T, id, doc string) *schema.Schema {
	t.Helper()

	s, err := schema.Parse(id, []byte(doc))
	require.NoError(t, err)

	return s
}

func requireHTTPError(t *testing.T, err error, status int, message string) *httperror.Error {
	t.Helper()

	require.Error(t, err)

	var herr *httperror.Error
	require.True(t, errors.As(err, &herr), "expected *httperror.Error, got %T", err)
	assert.Equal(t, status, herr.StatusCode)
	if message != "" {
		assert.Equal(t, message, herr.Message)
	}

	return herr
}

func jsonRequest(body string) events.APIGatewayProxyRequest {
	request := testRequest(POST, "/people")
	request.Headers[HeaderContentType] = "application/json"
	request.Body = body

	return request
}

func TestNewExtractor_defaultValidator(t *testing.T) {
	x := NewExtractor(nil)

	assert.IsType(t, &schema.JSONSchemaValidator{}, x.validator)
}

func TestExtractor_ExtractResource(t *testing.T) {
	x := NewExtractor(nil)
	s := mustSchema(t, "person.json", personSchema)

	resource, err := x.ExtractResource(dummyAPIGatewayProxyRequest("person-post"), s)

	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"age":       json.Number("36"),
	}, resource)
}

func TestExtractor_ExtractResource_base64(t *testing.T) {
	x := NewExtractor(nil)
	s := mustSchema(t, "person.json", personSchema)

	request := jsonRequest(base64.StdEncoding.EncodeToString([]byte(`{"firstName":"Ada","lastName":"Lovelace"}`)))
	request.IsBase64Encoded = true

	resource, err := x.ExtractResource(request, s)

	require.NoError(t, err)
	assert.Equal(t, "Ada", resource.(map[string]interface{})["firstName"])
}

func TestExtractor_ExtractResource_errors(t *testing.T) {
	x := NewExtractor(nil)
	s := mustSchema(t, "person.json", personSchema)

	tests := []struct {
		name    string
		request func() events.APIGatewayProxyRequest
		schema  *schema.Schema
		status  int
		message string
	}{
		{
			name:    "empty body",
			request: func() events.APIGatewayProxyRequest { return jsonRequest("") },
			schema:  s,
			status:  400,
			message: MsgBodyIsNull,
		},
		{
			name: "missing content type",
			request: func() events.APIGatewayProxyRequest {
				r := jsonRequest(`{}`)
				delete(r.Headers, HeaderContentType)
				return r
			},
			schema:  s,
			status:  415,
			message: MsgBodyNotJSON,
		},
		{
			name: "text content type",
			request: func() events.APIGatewayProxyRequest {
				r := jsonRequest(`{}`)
				r.Headers[HeaderContentType] = "text/plain"
				return r
			},
			schema:  s,
			status:  415,
			message: MsgBodyNotJSON,
		},
		{
			name: "broken base64",
			request: func() events.APIGatewayProxyRequest {
				r := jsonRequest("sefdfxsdf.d.dsd")
				r.IsBase64Encoded = true
				return r
			},
			schema: s,
			status: 400,
		},
		{
			name:    "missing schema",
			request: func() events.APIGatewayProxyRequest { return jsonRequest(`{}`) },
			status:  500,
			message: MsgResourceSchemaMissing,
		},
		{
			name:    "malformed json",
			request: func() events.APIGatewayProxyRequest { return jsonRequest(`{"firstName":`) },
			schema:  s,
			status:  400,
		},
		{
			name:    "trailing data",
			request: func() events.APIGatewayProxyRequest { return jsonRequest(`{} {}`) },
			schema:  s,
			status:  400,
		},
		{
			name:    "not conforming",
			request: func() events.APIGatewayProxyRequest { return jsonRequest(`{"age":-1}`) },
			schema:  s,
			status:  422,
			message: MsgJSONIsInvalid + "person.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource, err := x.ExtractResource(tt.request(), tt.schema)

			assert.Nil(t, resource)
			herr := requireHTTPError(t, err, tt.status, tt.message)
			if tt.status == 400 && tt.message == "" {
				assert.True(t, strings.HasPrefix(herr.Message, MsgJSONIsUnparsable))
				assert.Len(t, herr.Causes, 1)
			}
		})
	}
}

func TestExtractor_ExtractResource_violations(t *testing.T) {
	x := NewExtractor(nil)
	s := mustSchema(t, "person.json", personSchema)

	_, err := x.ExtractResource(jsonRequest(`{"age":-1}`), s)

	herr := requireHTTPError(t, err, 422, "")
	require.Len(t, herr.Causes, 3)

	paths := make([]string, 0, len(herr.Causes))
	for _, cause := range herr.Causes {
		violation, ok := cause.(schema.Violation)
		require.True(t, ok)
		paths = append(paths, violation.Path)
	}
	assert.ElementsMatch(t, []string{"/firstName", "/lastName", "/age"}, paths)
}

func TestDecodeResource(t *testing.T) {
	x := NewExtractor(nil)
	s := mustSchema(t, "person.json", personSchema)

	p, err := DecodeResource[person](x, dummyAPIGatewayProxyRequest("person-post"), s)

	require.NoError(t, err)
	assert.Equal(t, person{FirstName: "Ada", LastName: "Lovelace", Age: 36}, p)
}

func TestDecodeResource_invalid(t *testing.T) {
	x := NewExtractor(nil)
	s := mustSchema(t, "person.json", personSchema)

	p, err := DecodeResource[person](x, jsonRequest(`{"firstName":"Ada"}`), s)

	requireHTTPError(t, err, 422, "")
	assert.Equal(t, person{}, p)
}

func principalRequest(principalID interface{}) events.APIGatewayProxyRequest {
	request := testRequest(GET, "/people")
	request.RequestContext.Authorizer = map[string]interface{}{
		AuthorizerPrincipalID: principalID,
	}

	return request
}

func TestExtractor_ExtractPrincipal(t *testing.T) {
	x := NewExtractor(nil)
	s := mustSchema(t, "principal.json", principalSchema)

	p, err := x.ExtractPrincipal(dummyAPIGatewayProxyRequest("person-post"), s)

	require.NoError(t, err)
	assert.Equal(t, "3f2a8c51-4b7e-4f0e-9d7a-1c2b3d4e5f60", p["sub"])
	assert.Equal(t, []interface{}{"admin"}, p["roles"])
}

func TestExtractor_ExtractPrincipal_errors(t *testing.T) {
	x := NewExtractor(nil)
	s := mustSchema(t, "principal.json", principalSchema)

	noAuthorizer := testRequest(GET, "/people")

	tests := []struct {
		name    string
		request events.APIGatewayProxyRequest
		schema  *schema.Schema
		message string
	}{
		{"missing schema", principalRequest(`{"sub":"a"}`), nil, MsgPrincipalSchemaMissing},
		{"no authorizer", noAuthorizer, s, MsgPrincipalMissing},
		{"nil principal", principalRequest(nil), s, MsgPrincipalMissing},
		{"empty principal", principalRequest(""), s, MsgPrincipalMissing},
		{"not a string", principalRequest(map[string]interface{}{"sub": "a"}), s, MsgPrincipalNotString},
		{"malformed json", principalRequest(`{"sub":`), s, MsgPrincipalInvalid},
		{"not conforming", principalRequest(`{"roles":["admin"]}`), s, MsgPrincipalInvalid},
		{"not an object", principalRequest(`"a"`), mustSchema(t, "any.json", `{}`), MsgPrincipalInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := x.ExtractPrincipal(tt.request, tt.schema)

			assert.Nil(t, p)
			requireHTTPError(t, err, 401, tt.message)
		})
	}
}

func TestDecodePrincipal(t *testing.T) {
	x := NewExtractor(nil)
	s := mustSchema(t, "principal.json", principalSchema)

	p, err := DecodePrincipal[principal](x, dummyAPIGatewayProxyRequest("person-post"), s)

	require.NoError(t, err)
	assert.Equal(t, principal{Sub: "3f2a8c51-4b7e-4f0e-9d7a-1c2b3d4e5f60", Roles: []string{"admin"}}, p)
}

func TestExtractor_ExtractUUID(t *testing.T) {
	x := NewExtractor(nil)

	id := uuid.NewString()
	request := testRequest(GET, "/people/"+id)
	request.PathParameters = map[string]string{ParamUUID: strings.ToUpper(id)}

	actual, err := x.ExtractUUID(request)

	require.NoError(t, err)
	assert.Equal(t, id, actual)
}

func TestExtractor_ExtractUUID_errors(t *testing.T) {
	x := NewExtractor(nil)

	missing := testRequest(GET, "/people")

	malformed := testRequest(GET, "/people/nope")
	malformed.PathParameters = map[string]string{ParamUUID: "nope"}

	embedded := testRequest(GET, "/people/x")
	embedded.PathParameters = map[string]string{ParamUUID: "x" + uuid.NewString() + "x"}

	_, err := x.ExtractUUID(missing)
	requireHTTPError(t, err, 400, MsgUUIDMissing)

	_, err = x.ExtractUUID(malformed)
	requireHTTPError(t, err, 400, MsgUUIDNotMatch)

	_, err = x.ExtractUUID(embedded)
	requireHTTPError(t, err, 400, MsgUUIDNotMatch)
}

func TestExtractor_ExtractLocale(t *testing.T) {
	x := NewExtractor(nil)

	locales, err := x.ExtractLocale(dummyAPIGatewayProxyRequest("person-post"))

	require.NoError(t, err)
	assert.Equal(t, []string{"it-IT", "en"}, locales.Strings())
	assert.Equal(t, "it", locales[0].Language)
	assert.Equal(t, "IT", locales[0].Country)
}

func TestExtractor_ExtractLocale_queryWins(t *testing.T) {
	x := NewExtractor(nil)

	request := testRequest(GET, "/people")
	request.Headers[HeaderAcceptLanguage] = "fr"
	request.QueryStringParameters = map[string]string{ParamLocale: "en;q=0.5,it"}

	locales, err := x.ExtractLocale(request)

	require.NoError(t, err)
	assert.Equal(t, []string{"it", "en"}, locales.Strings())
}

func TestExtractor_ExtractLocale_absent(t *testing.T) {
	x := NewExtractor(nil)

	locales, err := x.ExtractLocale(testRequest(GET, "/people"))

	assert.NoError(t, err)
	assert.Nil(t, locales)

	request := testRequest(GET, "/people")
	request.QueryStringParameters = map[string]string{ParamLocale: ""}
	request.Headers[HeaderAcceptLanguage] = "fr"

	locales, err = x.ExtractLocale(request)

	assert.NoError(t, err)
	assert.Nil(t, locales)
}

func TestExtractor_ExtractLocale_invalid(t *testing.T) {
	x := NewExtractor(nil)

	query := testRequest(GET, "/people")
	query.QueryStringParameters = map[string]string{ParamLocale: "english"}

	_, err := x.ExtractLocale(query)
	herr := requireHTTPError(t, err, 400, MsgLocaleFormat)
	assert.Equal(t, []interface{}{"english"}, herr.Causes)

	header := testRequest(GET, "/people")
	header.Headers[HeaderAcceptLanguage] = "en, *"

	_, err = x.ExtractLocale(header)
	requireHTTPError(t, err, 400, MsgAcceptHeaderFormat)
}

func TestExtractor_WasModifiedSince(t *testing.T) {
	x := NewExtractor(nil)
	lastModified := time.Date(2015, 10, 21, 7, 28, 0, 500, time.UTC)

	request := testRequest(GET, "/people")

	modified, err := x.WasModifiedSince(request, lastModified)
	assert.NoError(t, err)
	assert.True(t, modified)

	request.Headers[HeaderIfModifiedSince] = "Wed, 21 Oct 2015 07:28:00 GMT"

	modified, err = x.WasModifiedSince(request, lastModified)
	assert.NoError(t, err)
	assert.False(t, modified)
}

func TestExtractor_forwarders(t *testing.T) {
	x := NewExtractor(nil)
	request := dummyAPIGatewayProxyRequest("person-post")

	assert.Equal(t, "POST", x.Method(request))
	assert.Equal(t, "https://abcdef1234.execute-api.eu-west-1.amazonaws.com/dev/people", x.ResourceURL(request))
	assert.Equal(t, "https://abcdef1234.execute-api.eu-west-1.amazonaws.com/dev/people/42", x.ResolveResourceURL(request, "42"))
}

func TestParseJSON(t *testing.T) {
	v, err := parseJSON(`{"big": 12345678901234567890}`)

	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), v.(map[string]interface{})["big"])

	_, err = parseJSON(`[1] 2`)
	assert.Error(t, err)

	_, err = parseJSON(``)
	assert.Error(t, err)
}

func TestDummyNamespace(t *testing.T) {
	const expected = "github.com/aws/aws-lambda-go/events.APIGatewayProxyRequest"

	assert.Equal(t, expected, dummyNamespace(events.APIGatewayProxyRequest{}))
	assert.Equal(t, expected, dummyNamespace(&events.APIGatewayProxyRequest{}))
	assert.FileExists(t, "testdata/dummy/"+expected+".person-post.json")
}
