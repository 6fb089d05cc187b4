package proxy

// Messages carried by the errors the Extractor returns.
const (
	MsgBodyIsNull             = "Missing object in event body"
	MsgBodyNotJSON            = "Expected application/json body"
	MsgJSONIsUnparsable       = "JSON parsing returned error "
	MsgJSONIsInvalid          = "Resource does not conform to validation schema "
	MsgResourceSchemaMissing  = "Resource schema is not provided"
	MsgPrincipalInvalid       = "Principal is invalid"
	MsgPrincipalNotString     = "Principal is not a string"
	MsgPrincipalMissing       = "Principal is missing"
	MsgPrincipalSchemaMissing = "Principal schema is not provided"
	MsgUUIDMissing            = "UUID is missing"
	MsgUUIDNotMatch           = "UUID does not match format"
	MsgLocaleFormat           = "locale param in query string is not in the locale format"
	MsgAcceptHeaderFormat     = "Accept-Language header is not in the locale format"
	MsgIfModifiedSinceInvalid = "Invalid If-Modified-Since header: "
)

// Header and parameter names read from requests.
const (
	HeaderContentType     = "Content-Type"
	HeaderAcceptLanguage  = "Accept-Language"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderForwardedProto  = "X-Forwarded-Proto"
	HeaderForwardedPort   = "X-Forwarded-Port"
	HeaderHost            = "Host"
	HeaderAllowOrigin     = "Access-Control-Allow-Origin"

	ParamUUID   = "uuid"
	ParamLocale = "locale"

	AuthorizerPrincipalID = "principalId"
)
