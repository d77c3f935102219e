package ratelimit

import (
	"path"
	"strings"
)

// unlimited is returned for health checks that must never be throttled
var unlimited = EndpointConfig{Rate: 0}

// unlimitedPaths are exempt for every method
var unlimitedPaths = map[string]bool{
	"/health": true,
}

// MatchEndpoint resolves a request to its endpoint configuration, or nil when
// none applies. The path is cleaned first so "/extract/" and "/extract" share a
// bucket. A config whose Path ends in "/" matches any path below it, and an
// empty Method matches any method. Exact paths win over prefixes, and among
// prefixes the longest wins.
func MatchEndpoint(reqPath string, method string, configs []EndpointConfig) *EndpointConfig {
	p := path.Clean("/" + reqPath)
	if unlimitedPaths[p] {
		ec := unlimited
		return &ec
	}

	var best *EndpointConfig
	for i := range configs {
		ec := &configs[i]
		if ec.Method != "" && !strings.EqualFold(ec.Method, method) {
			continue
		}
		if ec.Path == p {
			return ec
		}
		if strings.HasSuffix(ec.Path, "/") && strings.HasPrefix(p, ec.Path) {
			if best == nil || len(ec.Path) > len(best.Path) {
				best = ec
			}
		}
	}
	return best
}
