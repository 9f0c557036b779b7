package feed

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ReleaseFor maps a runtime version such as "~4" to a release. The tag
// "v4" wins when present; otherwise the highest release satisfying the
// runtime version as a semver constraint is chosen.
func (d *Document) ReleaseFor(runtimeVersion string) (string, error) {
	if tag, ok := d.Tags[TagName(runtimeVersion)]; ok && tag.Release != "" {
		return tag.Release, nil
	}

	constraint, err := semver.NewConstraint(runtimeVersion)
	if err != nil {
		return "", fmt.Errorf("parsing runtime version %q: %w", runtimeVersion, err)
	}

	var best *semver.Version
	var bestName string
	for name := range d.Releases {
		v, err := parseSemver(name)
		if err != nil || !constraint.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestName = v, name
		}
	}
	if best == nil {
		return "", fmt.Errorf("runtime %s: %w", runtimeVersion, ErrNoRelease)
	}
	return bestName, nil
}

// TagName returns the feed tag for a runtime version: "~4" becomes "v4".
func TagName(runtimeVersion string) string {
	return "v" + strings.TrimLeft(runtimeVersion, "~^v")
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}
