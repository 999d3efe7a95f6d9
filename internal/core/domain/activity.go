package domain

import "time"

// ActiveWindow is how recent a login must be for a user to count as active.
const ActiveWindow = 30 * 24 * time.Hour

// ComputeActive derives the active status from the last login timestamp.
// Missing or unparsable timestamps yield false.
func ComputeActive(lastLogin string, now time.Time) bool {
	if lastLogin == "" {
		return false
	}
	t, err := ParseTime(lastLogin)
	if err != nil {
		return false
	}
	return now.Sub(t) <= ActiveWindow
}

// ActiveString renders an active flag the way it is stored.
func ActiveString(active bool) string {
	if active {
		return "true"
	}
	return "false"
}
