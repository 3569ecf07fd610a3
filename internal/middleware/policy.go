package middleware

import "strings"

type Policy int

const (
	// PolicyAuthenticated requires a principal; it is the fallback.
	PolicyAuthenticated Policy = iota
	// PolicyPublic runs the gate but lets anonymous requests through.
	PolicyPublic
	// PolicyIgnored skips the gate entirely.
	PolicyIgnored
)

func (p Policy) String() string {
	switch p {
	case PolicyPublic:
		return "public"
	case PolicyIgnored:
		return "ignored"
	default:
		return "authenticated"
	}
}

// PolicyRule matches an exact path, or every path under a prefix when the
// pattern ends in "/*".
type PolicyRule struct {
	Pattern string
	Policy  Policy
}

func (r PolicyRule) matches(path string) bool {
	if prefix, ok := strings.CutSuffix(r.Pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// RoutePolicy is an ordered rule table; the first matching rule wins.
type RoutePolicy struct {
	rules []PolicyRule
}

func NewRoutePolicy(rules ...PolicyRule) *RoutePolicy {
	return &RoutePolicy{rules: rules}
}

func (p *RoutePolicy) Lookup(path string) Policy {
	for _, rule := range p.rules {
		if rule.matches(path) {
			return rule.Policy
		}
	}
	return PolicyAuthenticated
}
