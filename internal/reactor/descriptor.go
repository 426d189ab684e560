package reactor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/schema"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// descriptorDocument is the top-level shape of a reactor descriptor.
type descriptorDocument struct {
	Projects []schema.Project `yaml:"projects"`
}

// DescriptorLoader reads a reactor from a YAML or JSON document.
// JSON is accepted because it is a subset of YAML.
type DescriptorLoader struct {
	Path string
	Log  *zap.Logger
}

var _ contract.ReactorLoader = &DescriptorLoader{} // Compile-time check

// NewDescriptorLoader creates a loader for the descriptor file at path.
func NewDescriptorLoader(path string, log *zap.Logger) *DescriptorLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &DescriptorLoader{Path: path, Log: log}
}

// Load decodes the descriptor. Unknown keys are rejected so typos do not hide plugins.
func (l *DescriptorLoader) Load(ctx context.Context) ([]schema.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reactor descriptor %s: %w", l.Path, err)
	}
	projects, err := decodeDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("invalid reactor descriptor %s: %w", l.Path, err)
	}

	abs, _ := filepath.Abs(l.Path)
	for i := range projects {
		if projects[i].Path == "" {
			projects[i].Path = abs
		}
	}
	l.Log.Debug("Loaded reactor", zap.String("descriptor", l.Path), zap.Int("projects", len(projects)))
	return projects, nil
}

// decodeDescriptor parses and validates a descriptor document.
func decodeDescriptor(data []byte) ([]schema.Project, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc descriptorDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document is empty")
		}
		return nil, err
	}

	for i, project := range doc.Projects {
		if strings.TrimSpace(project.ArtifactID) == "" {
			return nil, fmt.Errorf("project #%d is missing artifact_id", i+1)
		}
	}
	return doc.Projects, nil
}
