package validation

import (
	"net/url"
	"sort"

	"xolium-sdk/internal/domain"
)

// RetryPolicy checks the retry bounds.
func RetryPolicy(p domain.RetryPolicy) Issues {
	var issues Issues
	intRange(&issues, "maxAttempts", p.MaxAttempts, 1, 10)
	intRange(&issues, "baseDelayMs", p.BaseDelayMs, 1, 60_000)
	intRange(&issues, "maxDelayMs", p.MaxDelayMs, 1, 300_000)

	if len(p.RetryableHTTPStatusCodes) == 0 {
		issues.add("retryableHttpStatusCodes", "must contain at least 1 element")
	}
	for i, code := range p.RetryableHTTPStatusCodes {
		intRange(&issues, indexPath("retryableHttpStatusCodes", i), code, 100, 599)
	}

	if p.MaxDelayMs < p.BaseDelayMs {
		issues.add("", "maxDelayMs must be >= baseDelayMs")
	}
	return issues
}

// APIConfig checks one API definition. Routes must define exactly the
// required route names, each non-empty.
func APIConfig(c domain.APIConfig, requiredRoutes []string) Issues {
	var issues Issues
	if !isHTTPURL(c.BaseURL) {
		issues.add("baseUrl", "must be an absolute http(s) URL")
	}
	intRange(&issues, "timeoutMs", c.TimeoutMs, 1, 120_000)

	required := make(map[string]bool, len(requiredRoutes))
	for _, name := range requiredRoutes {
		required[name] = true
		path, ok := c.Routes[name]
		switch {
		case !ok:
			issues.add("routes."+name, "required")
		case path == "":
			issues.add("routes."+name, "must be non-empty")
		}
	}

	var unknown []string
	for name := range c.Routes {
		if !required[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		issues.add("routes."+name, "unrecognized route")
	}
	return issues
}

// ClientConfig checks the complete client configuration.
func ClientConfig(c domain.ClientConfig) Issues {
	var issues Issues
	if !isHTTPURL(c.RPCEndpoint) {
		issues.add("rpcEndpoint", "must be an absolute http(s) URL")
	}
	if c.WSEndpoint != "" && !isURL(c.WSEndpoint, "ws", "wss") {
		issues.add("wsEndpoint", "must be an absolute ws(s) URL")
	}
	if !c.Commitment.IsValid() {
		issues.add("commitment", "must be one of processed, confirmed, finalized")
	}
	issues.merge("retry", RetryPolicy(c.Retry))
	issues.merge("apis.network", APIConfig(c.APIs.Network, domain.NetworkRouteNames))
	issues.merge("apis.execution", APIConfig(c.APIs.Execution, domain.ExecutionRouteNames))
	return issues
}

func isHTTPURL(raw string) bool {
	return isURL(raw, "http", "https")
}

func isURL(raw string, schemes ...string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return true
		}
	}
	return false
}
