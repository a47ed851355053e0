// Package featureflags reads opt-in behavior toggles from the environment.
package featureflags

import (
	"os"
	"strings"
)

// StrictTransitions gates lifecycle enforcement on service status changes.
// When off, any status may move to any other, matching the legacy behavior.
const StrictTransitions = "STRICT_TRANSITIONS"

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	return truthy(os.Getenv("FLAG_" + strings.ToUpper(name)))
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
