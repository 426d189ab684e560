package core

import "github.com/huangsam/snapguard/schema"

// ExtractSurface collects the unstable dependencies of every plugin in one declaration surface.
// A nil list is an absent surface and yields an empty set. Plugins without unstable
// dependencies never show up as keys.
func ExtractSurface(plugins []schema.Plugin) *schema.ViolationSet {
	violations := schema.NewViolationSet()
	for _, plugin := range plugins {
		var unstable []string
		for _, dep := range plugin.Dependencies {
			if IsUnstable(dep.Version) {
				unstable = append(unstable, dep.String())
			}
		}
		violations.Put(plugin.String(), unstable...)
	}
	return violations
}

// surfaceCount returns the number of plugin declarations on both surfaces.
func surfaceCount(s schema.PluginSurfaces) int {
	return len(s.ManagedPlugins()) + len(s.DirectPlugins())
}

// countPlugins returns the number of plugin declarations across all surfaces of a project.
func countPlugins(project schema.Project) int {
	total := surfaceCount(project.Build)
	for _, profile := range project.Profiles {
		total += surfaceCount(profile.Build)
	}
	return total
}
