package core

import (
	"strings"
	"testing"

	"github.com/huangsam/snapguard/schema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	pluginA     = "group:pluginA:1.0"
	libSnapshot = "group:lib:2.0-SNAPSHOT"
	selfPlugin  = "io.github.huangsam:snapguard-maven-plugin:1.0.0"
)

// coords parses a g:a:v identity into coordinates.
func coords(t *testing.T, identity string) schema.Coordinates {
	t.Helper()
	parts := strings.Split(identity, ":")
	if len(parts) != 3 {
		t.Fatalf("bad identity %q", identity)
	}
	return schema.Coordinates{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}
}

// plugin builds a plugin with jar dependencies given as g:a:v identities.
func plugin(t *testing.T, identity string, deps ...string) schema.Plugin {
	t.Helper()
	p := schema.Plugin{Coordinates: coords(t, identity)}
	for _, d := range deps {
		p.Dependencies = append(p.Dependencies, schema.Dependency{Coordinates: coords(t, d)})
	}
	return p
}

// directBuild wraps plugins as the direct surface of a project build.
func directBuild(plugins ...schema.Plugin) *schema.Build {
	return &schema.Build{BuildBase: schema.BuildBase{Plugins: plugins}}
}

// managedProfile wraps plugins as the managed surface of a profile.
func managedProfile(id string, plugins ...schema.Plugin) schema.Profile {
	return schema.Profile{
		ID:    id,
		Build: &schema.BuildBase{PluginManagement: &schema.PluginManagement{Plugins: plugins}},
	}
}

// project builds a reactor project from a g:a:v identity.
func project(t *testing.T, identity string, build *schema.Build, profiles ...schema.Profile) schema.Project {
	t.Helper()
	return schema.Project{Coordinates: coords(t, identity), Packaging: "jar", Build: build, Profiles: profiles}
}

// observedLogger returns a logger recording every entry at debug level and above.
func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// messages returns the messages of entries at level.
func messages(logs *observer.ObservedLogs, level zapcore.Level) []string {
	var out []string
	for _, entry := range logs.All() {
		if entry.Level == level {
			out = append(out, entry.Message)
		}
	}
	return out
}
