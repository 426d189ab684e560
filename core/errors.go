package core

import (
	"errors"

	"github.com/huangsam/snapguard/schema"
)

// releaseBlockedMessage is the user-facing reason a release cannot proceed.
const releaseBlockedMessage = "The project cannot be released due to one or more SNAPSHOT plugin-dependencies!"

// ErrReleaseBlocked matches every ReleaseBlockedError via errors.Is.
var ErrReleaseBlocked = errors.New("release blocked by SNAPSHOT plugin dependencies")

// ReleaseBlockedError is returned when at least one plugin in the reactor depends on a SNAPSHOT.
type ReleaseBlockedError struct {
	Projects   []schema.ProjectViolations // Only projects with violations
	Violations int                        // Total (plugin, dependency) pairs
}

// Error implements the error interface.
func (e *ReleaseBlockedError) Error() string {
	return releaseBlockedMessage
}

// Is makes errors.Is(err, ErrReleaseBlocked) hold.
func (e *ReleaseBlockedError) Is(target error) bool {
	return target == ErrReleaseBlocked
}
