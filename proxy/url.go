package proxy

import (
	"regexp"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws/endpoints"
)

// executeAPIRegexp matches the hosts api gateway generates for an api, in
// every aws partition.
var executeAPIRegexp = buildExecuteAPIRegexp(endpoints.DefaultPartitions())

func buildExecuteAPIRegexp(partitions []endpoints.Partition) *regexp.Regexp {
	suffixes := make([]string, 0, len(partitions))
	for _, p := range partitions {
		if suffix := p.DNSSuffix(); suffix != "" {
			suffixes = append(suffixes, regexp.QuoteMeta(suffix))
		}
	}

	if len(suffixes) == 0 {
		suffixes = append(suffixes, regexp.QuoteMeta("amazonaws.com"))
	}

	return regexp.MustCompile(`\.execute-api\..*\.(` + strings.Join(suffixes, "|") + `)$`)
}

// IsExecuteAPIHost returns true if host is a domain generated by api gateway
// rather than a custom domain.
func IsExecuteAPIHost(host string) bool {
	return executeAPIRegexp.MatchString(host)
}

// Method returns the http method of the request.
func Method(request events.APIGatewayProxyRequest) string {
	return request.HTTPMethod
}

// ResourceURL rebuilds the url the caller used from the forwarded headers.
//
// The port is left out when it is the default for the scheme. Requests made
// to a generated execute-api domain carry the stage in their url while the
// proxied path does not, so the stage is put back in front of the path.
func ResourceURL(request events.APIGatewayProxyRequest) string {
	protocol := request.Headers[HeaderForwardedProto]
	port := request.Headers[HeaderForwardedPort]
	host := request.Headers[HeaderHost]

	if port == "" || (protocol == "http" && port == "80") || (protocol == "https" && port == "443") {
		port = ""
	} else {
		port = ":" + port
	}

	contextPath := ""
	if IsExecuteAPIHost(host) {
		contextPath = "/" + request.RequestContext.Stage
	}

	return protocol + "://" + host + port + contextPath + request.Path
}

// ResolveResourceURL returns the url of the resource id below the requested
// url, as used in Location headers.
func ResolveResourceURL(request events.APIGatewayProxyRequest, id string) string {
	return ResourceURL(request) + "/" + id
}
