package gateway

import "strings"

// DefaultDevRefererMarkers match local development front-ends on ports 3000-3009.
var DefaultDevRefererMarkers = []string{"localhost:300", "127.0.0.1:300"}

// CorsPolicy decides which headers every response carries, based on the Referer.
type CorsPolicy struct {
	markers []string
}

// NewCorsPolicy uses DefaultDevRefererMarkers when markers is empty.
func NewCorsPolicy(markers []string) *CorsPolicy {
	if len(markers) == 0 {
		markers = DefaultDevRefererMarkers
	}
	return &CorsPolicy{markers: append([]string(nil), markers...)}
}

// AllowsCrossOrigin reports whether referer looks like a local dev origin.
func (p *CorsPolicy) AllowsCrossOrigin(referer string) bool {
	if referer == "" {
		return false
	}
	for _, m := range p.markers {
		if strings.Contains(referer, m) {
			return true
		}
	}
	return false
}

// Headers returns the response headers for a request with the given Referer.
func (p *CorsPolicy) Headers(referer string) map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if p.AllowsCrossOrigin(referer) {
		h["Access-Control-Allow-Origin"] = "*"
		h["Access-Control-Allow-Methods"] = "POST, OPTIONS"
		h["Access-Control-Allow-Headers"] = "Content-Type, Authorization"
	}
	return h
}
