package ruleset

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ValidateVersion checks that meta.version, when present, parses as a
// semantic version. This is not a spec.md invariant — meta.version is
// documented but left format-free — so callers (the linter) should treat
// a non-nil return as an advisory diagnostic, never a fatal error.
func ValidateVersion(meta Meta) error {
	if meta.Version == "" {
		return nil
	}
	if _, err := semver.NewVersion(meta.Version); err != nil {
		return fmt.Errorf("meta.version %q is not a valid semantic version: %w", meta.Version, err)
	}
	return nil
}
