package reactor

import (
	"encoding/xml"
	"strings"

	"github.com/huangsam/snapguard/schema"
)

// defaultPluginGroupID is assumed for plugins that omit their groupId.
const defaultPluginGroupID = "org.apache.maven.plugins"

// pomProject is the subset of a pom.xml that the check needs.
type pomProject struct {
	XMLName    xml.Name      `xml:"project"`
	GroupID    string        `xml:"groupId"`
	ArtifactID string        `xml:"artifactId"`
	Version    string        `xml:"version"`
	Packaging  string        `xml:"packaging"`
	Parent     *pomParent    `xml:"parent"`
	Properties pomProperties `xml:"properties"`
	Modules    []string      `xml:"modules>module"`
	Build      *pomBuild     `xml:"build"`
	Profiles   []pomProfile  `xml:"profiles>profile"`
}

type pomParent struct {
	GroupID      string  `xml:"groupId"`
	ArtifactID   string  `xml:"artifactId"`
	Version      string  `xml:"version"`
	RelativePath *string `xml:"relativePath"`
}

type pomBuild struct {
	pomBuildBase
	FinalName string `xml:"finalName"`
	Directory string `xml:"directory"`
}

type pomBuildBase struct {
	PluginManagement *pomPluginManagement `xml:"pluginManagement"`
	Plugins          []pomPlugin          `xml:"plugins>plugin"`
}

type pomPluginManagement struct {
	Plugins []pomPlugin `xml:"plugins>plugin"`
}

type pomPlugin struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Inherited    string          `xml:"inherited"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
}

type pomProfile struct {
	ID    string        `xml:"id"`
	Build *pomBuildBase `xml:"build"`
}

// pomProperties collects the free-form children of <properties>.
type pomProperties map[string]string

// UnmarshalXML reads every child element as a name/value pair.
func (p *pomProperties) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	props := make(pomProperties)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

// toProject converts the raw pom into the build model, interpolating every
// coordinate through resolve. build is the effective build after parent
// inheritance, so it may be set even when the pom declares no <build>.
func (p *pomProject) toProject(resolve func(string) string, path string, build *pomBuild) schema.Project {
	project := schema.Project{
		Coordinates: schema.Coordinates{
			GroupID:    resolve(p.GroupID),
			ArtifactID: resolve(p.ArtifactID),
			Version:    resolve(p.Version),
		},
		Packaging: resolve(p.Packaging),
		Path:      path,
	}
	if project.Packaging == "" {
		project.Packaging = "jar"
	}
	var managed []pomPlugin
	if build != nil {
		managed = build.managed()
		base := build.pomBuildBase
		base.Plugins = applyManagement(base.Plugins, managed)
		project.Build = &schema.Build{
			BuildBase: base.toBuildBase(resolve),
			FinalName: resolve(build.FinalName),
			Directory: resolve(build.Directory),
		}
	}
	for _, profile := range p.Profiles {
		converted := schema.Profile{ID: strings.TrimSpace(profile.ID)}
		if profile.Build != nil {
			raw := *profile.Build
			raw.Plugins = applyManagement(raw.Plugins, mergePlugins(managed, raw.managed()))
			base := raw.toBuildBase(resolve)
			converted.Build = &base
		}
		project.Profiles = append(project.Profiles, converted)
	}
	return project
}

func (b *pomBuildBase) toBuildBase(resolve func(string) string) schema.BuildBase {
	base := schema.BuildBase{Plugins: convertPlugins(b.Plugins, resolve)}
	if b.PluginManagement != nil {
		base.PluginManagement = &schema.PluginManagement{
			Plugins: convertPlugins(b.PluginManagement.Plugins, resolve),
		}
	}
	return base
}

func convertPlugins(plugins []pomPlugin, resolve func(string) string) []schema.Plugin {
	if plugins == nil {
		return nil
	}
	converted := make([]schema.Plugin, 0, len(plugins))
	for _, plugin := range plugins {
		groupID := resolve(plugin.GroupID)
		if groupID == "" {
			groupID = defaultPluginGroupID
		}
		out := schema.Plugin{
			Coordinates: schema.Coordinates{
				GroupID:    groupID,
				ArtifactID: resolve(plugin.ArtifactID),
				Version:    resolve(plugin.Version),
			},
		}
		for _, dep := range plugin.Dependencies {
			out.Dependencies = append(out.Dependencies, schema.Dependency{
				Coordinates: schema.Coordinates{
					GroupID:    resolve(dep.GroupID),
					ArtifactID: resolve(dep.ArtifactID),
					Version:    resolve(dep.Version),
				},
				Type:       resolve(dep.Type),
				Classifier: resolve(dep.Classifier),
			})
		}
		converted = append(converted, out)
	}
	return converted
}
