package reactor

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/schema"
	"go.uber.org/zap"
)

// pomFileName is the descriptor looked up inside module directories.
const pomFileName = "pom.xml"

// maxInterpolationPasses bounds nested ${...} expansion.
const maxInterpolationPasses = 10

// maxParentDepth bounds the local parent chain used for property inheritance.
const maxParentDepth = 32

var propertyPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// PomLoader reads a reactor from a tree of pom.xml files.
// The root pom comes first, followed by its modules depth-first in declaration order.
type PomLoader struct {
	Root string
	Log  *zap.Logger

	cache map[string]*pomProject
}

var _ contract.ReactorLoader = &PomLoader{} // Compile-time check

// NewPomLoader creates a loader for the pom file or directory at root.
func NewPomLoader(root string, log *zap.Logger) *PomLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &PomLoader{Root: root, Log: log}
}

// Load parses the root pom and every module it reaches. Each pom is visited once.
func (l *PomLoader) Load(ctx context.Context) ([]schema.Project, error) {
	rootPom, err := pomFile(l.Root)
	if err != nil {
		return nil, err
	}

	l.cache = make(map[string]*pomProject)
	visited := make(map[string]struct{})
	var projects []schema.Project
	if err := l.walk(ctx, rootPom, visited, &projects); err != nil {
		return nil, err
	}
	l.Log.Debug("Loaded reactor", zap.String("root", rootPom), zap.Int("projects", len(projects)))
	return projects, nil
}

// walk appends the project at path, then recurses into its modules.
func (l *PomLoader) walk(ctx context.Context, path string, visited map[string]struct{}, out *[]schema.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, seen := visited[path]; seen {
		return nil
	}
	visited[path] = struct{}{}

	pom, err := l.parse(path)
	if err != nil {
		return err
	}

	props := l.properties(path, pom, 0)
	resolve := func(s string) string { return interpolate(s, props) }
	*out = append(*out, pom.toProject(resolve, path, l.effectiveBuild(path, pom, 0)))

	dir := filepath.Dir(path)
	for _, module := range pom.Modules {
		module = strings.TrimSpace(module)
		if module == "" {
			continue
		}
		modulePom, err := pomFile(filepath.Join(dir, module))
		if err != nil {
			return fmt.Errorf("module '%s' of %s: %w", module, path, err)
		}
		if err := l.walk(ctx, modulePom, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// parse reads and caches one pom, applying groupId and version inheritance from <parent>.
func (l *PomLoader) parse(path string) (*pomProject, error) {
	if pom, ok := l.cache[path]; ok {
		return pom, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var pom pomProject
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if strings.TrimSpace(pom.ArtifactID) == "" {
		return nil, fmt.Errorf("failed to parse %s: missing artifactId", path)
	}
	if pom.Parent != nil {
		if strings.TrimSpace(pom.GroupID) == "" {
			pom.GroupID = pom.Parent.GroupID
		}
		if strings.TrimSpace(pom.Version) == "" {
			pom.Version = pom.Parent.Version
		}
	}

	l.cache[path] = &pom
	return &pom, nil
}

// properties builds the interpolation table for a pom: the properties of its local
// parent chain, its own properties, then the project built-ins.
func (l *PomLoader) properties(path string, pom *pomProject, depth int) map[string]string {
	props := make(map[string]string)

	if parentPath, ok := l.localParent(path, pom); ok && depth < maxParentDepth {
		if parent, err := l.parse(parentPath); err == nil {
			for k, v := range l.properties(parentPath, parent, depth+1) {
				props[k] = v
			}
		} else {
			l.Log.Debug("Ignoring unreadable parent pom", zap.String("path", parentPath), zap.Error(err))
		}
	}
	for k, v := range pom.Properties {
		props[k] = v
	}

	builtins := map[string]string{
		"groupId":    pom.GroupID,
		"artifactId": pom.ArtifactID,
		"version":    pom.Version,
		"packaging":  pom.Packaging,
		"basedir":    filepath.Dir(path),
	}
	if pom.Parent != nil {
		builtins["parent.groupId"] = pom.Parent.GroupID
		builtins["parent.artifactId"] = pom.Parent.ArtifactID
		builtins["parent.version"] = pom.Parent.Version
	}
	for k, v := range builtins {
		props["project."+k] = strings.TrimSpace(v)
		props["pom."+k] = strings.TrimSpace(v)
	}
	props["basedir"] = filepath.Dir(path)
	return props
}

// localParent locates the parent pom on disk. A parent that does not match the
// declared coordinates is treated as remote and ignored.
func (l *PomLoader) localParent(path string, pom *pomProject) (string, bool) {
	if pom.Parent == nil {
		return "", false
	}
	relative := "../" + pomFileName
	if pom.Parent.RelativePath != nil {
		relative = strings.TrimSpace(*pom.Parent.RelativePath)
	}
	if relative == "" {
		return "", false
	}

	parentPath, err := pomFile(filepath.Join(filepath.Dir(path), relative))
	if err != nil {
		return "", false
	}
	parent, err := l.parse(parentPath)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(parent.ArtifactID) != strings.TrimSpace(pom.Parent.ArtifactID) ||
		strings.TrimSpace(parent.GroupID) != strings.TrimSpace(pom.Parent.GroupID) {
		return "", false
	}
	return parentPath, true
}

// pomFile resolves a pom file or a directory holding one into an absolute file path.
func pomFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("pom not found at %s: %w", abs, err)
	}
	if !info.IsDir() {
		return abs, nil
	}
	candidate := filepath.Join(abs, pomFileName)
	info, err = os.Stat(candidate)
	if err != nil {
		return "", fmt.Errorf("no %s in %s: %w", pomFileName, abs, err)
	}
	if info.IsDir() {
		return "", errors.New(candidate + " is a directory")
	}
	return candidate, nil
}

// interpolate expands ${...} placeholders. Unknown placeholders stay verbatim.
func interpolate(value string, props map[string]string) string {
	value = strings.TrimSpace(value)
	for range maxInterpolationPasses {
		if !strings.Contains(value, "${") {
			return value
		}
		next := propertyPattern.ReplaceAllStringFunc(value, func(match string) string {
			if v, ok := props[match[2:len(match)-1]]; ok {
				return v
			}
			return match
		})
		if next == value {
			return value
		}
		value = next
	}
	return value
}
