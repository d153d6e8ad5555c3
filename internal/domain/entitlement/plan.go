// Package entitlement defines the static plan-to-feature table and the
// enforcement helpers used before every quota-consuming or gated action.
package entitlement

import "strings"

// Plan is a canonical subscription plan identifier.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanIndividual Plan = "individual"
	PlanMinistry   Plan = "ministry"
	PlanChurch     Plan = "church"
)

// legacyAliases maps the pre-rename plan scheme (still emitted by the billing
// relay) onto the canonical set.
var legacyAliases = map[string]Plan{
	"starter":    PlanIndividual,
	"growth":     PlanMinistry,
	"enterprise": PlanChurch,
}

// ParsePlan normalizes a plan name to a canonical Plan. Matching is
// case-insensitive and legacy aliases are honored. Unknown or empty names
// resolve to the free plan, never to an error.
func ParsePlan(name string) Plan {
	n := strings.ToLower(strings.TrimSpace(name))
	switch Plan(n) {
	case PlanFree, PlanIndividual, PlanMinistry, PlanChurch:
		return Plan(n)
	}
	if p, ok := legacyAliases[n]; ok {
		return p
	}
	return PlanFree
}

// IsCanonical reports whether name is already a canonical plan identifier.
func IsCanonical(name string) bool {
	switch Plan(strings.ToLower(name)) {
	case PlanFree, PlanIndividual, PlanMinistry, PlanChurch:
		return true
	}
	return false
}
