package dto

// UpdatePrefsRequest applies preference changes. OrgScope selects the
// per-organization overlay instead of the global layer.
type UpdatePrefsRequest struct {
	Updates  map[string]any `json:"updates" binding:"required"`
	OrgScope bool           `json:"orgScope"`
}

// ResetPrefsRequest clears one preference scope.
type ResetPrefsRequest struct {
	OrgScope bool `json:"orgScope"`
}

// PrefsResponse returns the effective merged preferences.
type PrefsResponse struct {
	Preferences map[string]any `json:"preferences"`
}

// ThemeUsageResponse reports theme adoption across an organization.
type ThemeUsageResponse struct {
	Themes map[string]int64 `json:"themes"`
}
