package access

import "strings"

// Allowlist is the escape-hatch trust configuration predating the role
// system: a small, known set of operator emails, plus legacy tenant slugs
// whose admin members behave as system admins. Loaded from configuration,
// not hardcoded; role checks always run before allowlist checks.
type Allowlist struct {
	operatorEmails map[string]bool
	legacySlugs    map[string]bool
}

// NewAllowlist builds an allowlist from operator emails and legacy org slugs.
// Entries are matched case-insensitively.
func NewAllowlist(operatorEmails, legacySlugs []string) *Allowlist {
	a := &Allowlist{
		operatorEmails: make(map[string]bool, len(operatorEmails)),
		legacySlugs:    make(map[string]bool, len(legacySlugs)),
	}
	for _, e := range operatorEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			a.operatorEmails[e] = true
		}
	}
	for _, s := range legacySlugs {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			a.legacySlugs[s] = true
		}
	}
	return a
}

// IsOperatorEmail reports whether email belongs to a known operator.
func (a *Allowlist) IsOperatorEmail(email string) bool {
	return a.operatorEmails[strings.ToLower(email)]
}

// IsLegacySlug reports whether slug is a legacy tenant.
func (a *Allowlist) IsLegacySlug(slug string) bool {
	return a.legacySlugs[strings.ToLower(slug)]
}
