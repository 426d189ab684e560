package reactor

import "strings"

// effectiveBuild returns the build of pom with the build of its local parent chain
// merged in. Returns nil when neither the pom nor any local parent declares one.
func (l *PomLoader) effectiveBuild(path string, pom *pomProject, depth int) *pomBuild {
	var inherited *pomBuild
	if parentPath, ok := l.localParent(path, pom); ok && depth < maxParentDepth {
		if parent, err := l.parse(parentPath); err == nil {
			inherited = l.effectiveBuild(parentPath, parent, depth+1)
		}
	}
	if inherited == nil {
		return pom.Build
	}

	var own pomBuild
	if pom.Build != nil {
		own = *pom.Build
	}
	if managed := mergePlugins(inheritable(inherited.managed()), own.managed()); managed != nil {
		own.PluginManagement = &pomPluginManagement{Plugins: managed}
	}
	own.Plugins = mergePlugins(inheritable(inherited.Plugins), own.Plugins)
	return &own
}

func (b *pomBuildBase) managed() []pomPlugin {
	if b == nil || b.PluginManagement == nil {
		return nil
	}
	return b.PluginManagement.Plugins
}

// inheritable drops the plugins a parent marks with <inherited>false</inherited>.
func inheritable(plugins []pomPlugin) []pomPlugin {
	var out []pomPlugin
	for _, plugin := range plugins {
		if strings.EqualFold(strings.TrimSpace(plugin.Inherited), "false") {
			continue
		}
		out = append(out, plugin)
	}
	return out
}

// mergePlugins overlays child on parent by groupId:artifactId. Parent order is kept,
// plugins only the child declares are appended.
func mergePlugins(parent, child []pomPlugin) []pomPlugin {
	if len(parent) == 0 {
		return child
	}
	if len(child) == 0 {
		return parent
	}

	index := make(map[string]int, len(parent))
	out := make([]pomPlugin, 0, len(parent)+len(child))
	for _, plugin := range parent {
		index[plugin.key()] = len(out)
		out = append(out, plugin)
	}
	for _, plugin := range child {
		if i, ok := index[plugin.key()]; ok {
			out[i] = mergePlugin(out[i], plugin)
			continue
		}
		index[plugin.key()] = len(out)
		out = append(out, plugin)
	}
	return out
}

// applyManagement fills each plugin from the managed entry with the same key.
func applyManagement(plugins, managed []pomPlugin) []pomPlugin {
	if len(plugins) == 0 || len(managed) == 0 {
		return plugins
	}
	byKey := make(map[string]pomPlugin, len(managed))
	for _, plugin := range managed {
		byKey[plugin.key()] = plugin
	}
	out := make([]pomPlugin, len(plugins))
	for i, plugin := range plugins {
		if m, ok := byKey[plugin.key()]; ok {
			plugin = mergePlugin(m, plugin)
		}
		out[i] = plugin
	}
	return out
}

// mergePlugin keeps the child's declared values and takes the rest from base.
// Dependencies of base the child does not redeclare are added after the child's own.
func mergePlugin(base, child pomPlugin) pomPlugin {
	out := child
	if strings.TrimSpace(out.GroupID) == "" {
		out.GroupID = base.GroupID
	}
	if strings.TrimSpace(out.Version) == "" {
		out.Version = base.Version
	}

	seen := make(map[string]struct{}, len(child.Dependencies))
	out.Dependencies = append([]pomDependency(nil), child.Dependencies...)
	for _, dep := range child.Dependencies {
		seen[dep.key()] = struct{}{}
	}
	for _, dep := range base.Dependencies {
		if _, ok := seen[dep.key()]; ok {
			continue
		}
		out.Dependencies = append(out.Dependencies, dep)
	}
	return out
}

func (p pomPlugin) key() string {
	groupID := strings.TrimSpace(p.GroupID)
	if groupID == "" {
		groupID = defaultPluginGroupID
	}
	return groupID + ":" + strings.TrimSpace(p.ArtifactID)
}

func (d pomDependency) key() string {
	depType := strings.TrimSpace(d.Type)
	if depType == "" {
		depType = "jar"
	}
	return strings.Join([]string{
		strings.TrimSpace(d.GroupID),
		strings.TrimSpace(d.ArtifactID),
		depType,
		strings.TrimSpace(d.Classifier),
	}, ":")
}
