package inventory

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// isNewer reports whether candidate is a higher version than current. When
// either side does not parse as a semantic version, the current item is kept.
func isNewer(candidate, current string) bool {
	cv, err := parseSemver(candidate)
	if err != nil {
		return false
	}
	lv, err := parseSemver(current)
	if err != nil {
		return false
	}
	return cv.GreaterThan(lv)
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
