package wallet

import "strings"

// Environment abstracts the host surface the embedded-context check probes.
// Implementations must not panic; ParentOrigin returns an error when the
// parent frame is cross-origin blocked.
type Environment interface {
	HasHostSDK() bool
	UserAgent() string
	Query(key string) string
	ParentOrigin() (string, error)
}

// Detector decides whether the app runs inside a mini-app host container or
// as a standalone page. The decision gates connector classification and
// auto-connect.
type Detector struct {
	env         Environment
	uaMarkers   []string
	hostOrigins []string
	queryFlag   string
}

func NewDetector(env Environment) *Detector {
	return &Detector{
		env:         env,
		uaMarkers:   []string{"warpcast", "farcaster"},
		hostOrigins: []string{"https://warpcast.com", "https://client.warpcast.com", "https://farcaster.xyz"},
		queryFlag:   "miniApp",
	}
}

// IsEmbedded is synchronous, cheap, and safe to call repeatedly. Evidence is
// checked in order; any positive match wins. It never panics even when the
// environment misbehaves.
func (d *Detector) IsEmbedded() (embedded bool) {
	defer func() {
		if recover() != nil {
			embedded = false
		}
	}()

	if d.env == nil {
		return false
	}

	if d.env.HasHostSDK() {
		return true
	}

	ua := strings.ToLower(d.env.UserAgent())
	for _, marker := range d.uaMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}

	if d.env.Query(d.queryFlag) == "true" {
		return true
	}

	origin, err := d.env.ParentOrigin()
	if err != nil {
		// cross-origin blocked: re-check the SDK handle instead of assuming
		// an embedding
		return d.env.HasHostSDK()
	}
	for _, host := range d.hostOrigins {
		if origin == host {
			return true
		}
	}

	return false
}
