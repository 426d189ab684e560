package core

import (
	"github.com/huangsam/snapguard/schema"
	"go.uber.org/zap"
)

// Report lines, indented by nesting level.
const (
	passMessage      = "No plugin in the reactor references a SNAPSHOT dependency."
	failHeader       = "\tThere are plugins with SNAPSHOT dependencies! The following list contains all SNAPSHOT dependencies grouped by plugin and module:"
	projectPrefix    = "\t\t[PROJECT] "
	pluginPrefix     = "\t\t\t[PLUGIN] "
	dependencyPrefix = "\t\t\t\t[DEPENDENCY] "
)

// ReportVerdict logs the outcome of a reactor check.
// On pass it logs one info line and returns nil. On failure it logs the violation tree
// at error level, skipping projects without violations, and returns a *ReleaseBlockedError.
func ReportVerdict(log *zap.Logger, projects []schema.ProjectViolations, hasViolations bool) error {
	if log == nil {
		log = zap.NewNop()
	}
	if !hasViolations {
		log.Info(passMessage)
		return nil
	}

	blocked := &ReleaseBlockedError{}
	log.Error(failHeader)
	for _, p := range projects {
		if p.Violations.IsEmpty() {
			continue
		}
		blocked.Projects = append(blocked.Projects, p)
		log.Error(projectPrefix + p.ProjectID)
		for _, plugin := range p.Violations.Plugins() {
			log.Error(pluginPrefix + plugin)
			for _, dep := range p.Violations.Dependencies(plugin) {
				log.Error(dependencyPrefix + dep)
				blocked.Violations++
			}
		}
	}
	return blocked
}
