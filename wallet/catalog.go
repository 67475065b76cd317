package wallet

import "strings"

// Role is a connector's logical slot in the wallet picker.
type Role int

const (
	RoleEmbedded Role = iota
	RolePrimary
	RoleRemote
	RoleOther
	RoleSuppressed
)

func (r Role) String() string {
	switch r {
	case RoleEmbedded:
		return "embedded"
	case RolePrimary:
		return "primary"
	case RoleRemote:
		return "remote"
	case RoleOther:
		return "other"
	default:
		return "suppressed"
	}
}

// Env carries the environment signals classification depends on.
type Env struct {
	// Embedded is true inside a mini-app host container.
	Embedded bool
	// MobileOrRestricted relaxes readiness requirements: such browsers
	// under-report connector readiness.
	MobileOrRestricted bool
	// InjectedIsMetaMask is true when the host-injected wallet object
	// advertises the extension's marker flag.
	InjectedIsMetaMask bool
}

// Partition is the classified connector set the picker renders.
type Partition struct {
	Embedded *Connector
	Primary  *Connector
	Remote   *Connector
	Others   []*Connector
}

const (
	keywordEmbeddedA = "farcaster"
	keywordEmbeddedB = "warpcast"
	keywordPrimary   = "metamask"
	keywordRemote    = "walletconnect"
	keywordCustodial = "safe"
	keywordInjected  = "injected"
)

type classifyCtx struct {
	Env
	// hasNamedPrimary is true when a name-specific extension connector
	// exists anywhere in the set; it gates injected promotion/suppression.
	hasNamedPrimary bool
}

type rule struct {
	role  Role
	match func(c *Connector, cc classifyCtx) bool
}

// classifyRules is the classification policy: an ordered predicate table,
// first match wins per connector.
var classifyRules = []rule{
	{RoleEmbedded, func(c *Connector, cc classifyCtx) bool {
		return (matches(c, keywordEmbeddedA) || matches(c, keywordEmbeddedB)) &&
			(c.Ready || cc.MobileOrRestricted)
	}},
	{RoleSuppressed, func(c *Connector, cc classifyCtx) bool {
		return matches(c, keywordCustodial)
	}},
	{RolePrimary, func(c *Connector, cc classifyCtx) bool {
		return matches(c, keywordPrimary)
	}},
	{RolePrimary, func(c *Connector, cc classifyCtx) bool {
		return matches(c, keywordInjected) && !cc.hasNamedPrimary && cc.InjectedIsMetaMask
	}},
	{RoleSuppressed, func(c *Connector, cc classifyCtx) bool {
		return matches(c, keywordInjected) && cc.hasNamedPrimary
	}},
	{RoleRemote, func(c *Connector, cc classifyCtx) bool {
		return matches(c, keywordRemote) && (c.Ready || cc.MobileOrRestricted)
	}},
	{RoleOther, func(c *Connector, cc classifyCtx) bool {
		return c.Ready
	}},
}

func matches(c *Connector, keyword string) bool {
	return strings.Contains(strings.ToLower(c.ID), keyword) ||
		strings.Contains(strings.ToLower(c.Name), keyword)
}

// classifyRole runs the rule table for one connector.
func classifyRole(c *Connector, cc classifyCtx) Role {
	for _, r := range classifyRules {
		if r.match(c, cc) {
			return r.role
		}
	}
	return RoleSuppressed
}

// Classify partitions the enumerated connectors into picker slots. Singleton
// slots keep the first match; later duplicates of a filled slot fall back to
// the others list when ready, otherwise they are dropped.
func Classify(connectors []*Connector, env Env) Partition {
	cc := classifyCtx{Env: env}
	for _, c := range connectors {
		if matches(c, keywordPrimary) {
			cc.hasNamedPrimary = true
			break
		}
	}

	var p Partition
	for _, c := range connectors {
		switch classifyRole(c, cc) {
		case RoleEmbedded:
			if p.Embedded == nil {
				p.Embedded = c
			} else if c.Ready {
				p.Others = append(p.Others, c)
			}
		case RolePrimary:
			if p.Primary == nil {
				p.Primary = c
			} else if c.Ready {
				p.Others = append(p.Others, c)
			}
		case RoleRemote:
			if p.Remote == nil {
				p.Remote = c
			} else if c.Ready {
				p.Others = append(p.Others, c)
			}
		case RoleOther:
			p.Others = append(p.Others, c)
		}
	}
	return p
}
