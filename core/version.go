package core

import (
	"strings"

	"github.com/huangsam/snapguard/schema"
)

// IsUnstable reports whether version carries the SNAPSHOT qualifier suffix.
// Surrounding whitespace is ignored and the qualifier is matched case-insensitively.
// A bare qualifier without a version in front of it is not a version and counts as stable.
func IsUnstable(version string) bool {
	v := strings.TrimSpace(version)
	q := schema.SnapshotQualifier
	if len(v) <= len(q) {
		return false
	}
	return strings.EqualFold(v[len(v)-len(q):], q)
}
