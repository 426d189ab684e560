// Package schema has the build model, violation containers and result types shared by all parts of snapguard.
package schema

import "strings"

// Coordinates identify an artifact in the build ecosystem.
type Coordinates struct {
	GroupID    string `json:"group_id" yaml:"group_id"`
	ArtifactID string `json:"artifact_id" yaml:"artifact_id"`
	Version    string `json:"version" yaml:"version"`
}

// String renders the coordinates as groupId:artifactId:version.
func (c Coordinates) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// Dependency is a dependency declared on a plugin.
type Dependency struct {
	Coordinates `yaml:",inline"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Classifier  string `json:"classifier,omitempty" yaml:"classifier,omitempty"`
}

// String renders the dependency identity used in reports.
// The type only shows up when it differs from the default or a classifier is present.
func (d Dependency) String() string {
	depType := strings.TrimSpace(d.Type)
	classifier := strings.TrimSpace(d.Classifier)

	parts := []string{d.GroupID, d.ArtifactID}
	switch {
	case classifier != "":
		if depType == "" {
			depType = DefaultDependencyType
		}
		parts = append(parts, depType, classifier)
	case depType != "" && depType != DefaultDependencyType:
		parts = append(parts, depType)
	}
	parts = append(parts, d.Version)
	return strings.Join(parts, ":")
}

// Plugin is a build plugin declaration together with its own dependencies.
type Plugin struct {
	Coordinates  `yaml:",inline"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// String renders the plugin identity used for grouping.
func (p Plugin) String() string {
	return p.Coordinates.String()
}

// PluginManagement holds plugin defaults inherited by reference.
type PluginManagement struct {
	Plugins []Plugin `json:"plugins,omitempty" yaml:"plugins,omitempty"`
}

// PluginSurfaces is implemented by every build shape that can declare plugins.
// Both methods may return nil, which means "no data".
type PluginSurfaces interface {
	ManagedPlugins() []Plugin
	DirectPlugins() []Plugin
}

// BuildBase is the build configuration shared by projects and profiles.
type BuildBase struct {
	PluginManagement *PluginManagement `json:"plugin_management,omitempty" yaml:"plugin_management,omitempty"`
	Plugins          []Plugin          `json:"plugins,omitempty" yaml:"plugins,omitempty"`
}

var _ PluginSurfaces = (*BuildBase)(nil) // Compile-time check

// ManagedPlugins returns the plugin management list, or nil when absent.
func (b *BuildBase) ManagedPlugins() []Plugin {
	if b == nil || b.PluginManagement == nil {
		return nil
	}
	return b.PluginManagement.Plugins
}

// DirectPlugins returns the directly declared plugins, or nil when absent.
func (b *BuildBase) DirectPlugins() []Plugin {
	if b == nil {
		return nil
	}
	return b.Plugins
}

// Build is the project-level build configuration.
type Build struct {
	BuildBase `yaml:",inline"`
	FinalName string `json:"final_name,omitempty" yaml:"final_name,omitempty"`
	Directory string `json:"directory,omitempty" yaml:"directory,omitempty"`
}

var _ PluginSurfaces = (*Build)(nil) // Compile-time check

// ManagedPlugins returns the plugin management list, or nil when absent.
func (b *Build) ManagedPlugins() []Plugin {
	if b == nil {
		return nil
	}
	return b.BuildBase.ManagedPlugins()
}

// DirectPlugins returns the directly declared plugins, or nil when absent.
func (b *Build) DirectPlugins() []Plugin {
	if b == nil {
		return nil
	}
	return b.BuildBase.DirectPlugins()
}

// Profile is a named build overlay declared on a project.
type Profile struct {
	ID    string     `json:"id" yaml:"id"`
	Build *BuildBase `json:"build,omitempty" yaml:"build,omitempty"`
}

// Project is a module of the reactor.
type Project struct {
	Coordinates `yaml:",inline"`
	Packaging   string    `json:"packaging,omitempty" yaml:"packaging,omitempty"`
	Build       *Build    `json:"build,omitempty" yaml:"build,omitempty"`
	Profiles    []Profile `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	Path        string    `json:"path,omitempty" yaml:"path,omitempty"` // Descriptor location, informational only
}

// String renders the project identity used in reports.
func (p Project) String() string {
	return p.Coordinates.String()
}
