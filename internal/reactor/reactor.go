// Package reactor loads the projects of a multi-module build from disk.
package reactor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/schema"
	"go.uber.org/zap"
)

// NewLoader picks a loader for path. With AutoFormat, directories and .xml files
// are read as pom trees while .yaml, .yml and .json files are read as descriptors.
func NewLoader(format schema.ReactorFormat, path string, log *zap.Logger) (contract.ReactorLoader, error) {
	if path == "" {
		return nil, fmt.Errorf("reactor path cannot be empty")
	}
	if format == "" || format == schema.AutoFormat {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	switch format {
	case schema.PomFormat:
		return NewPomLoader(path, log), nil
	case schema.YAMLFormat, schema.JSONFormat:
		return NewDescriptorLoader(path, log), nil
	default:
		return nil, fmt.Errorf("unsupported reactor format '%s'", format)
	}
}

// DetectFormat infers the reactor format from the path.
func DetectFormat(path string) (schema.ReactorFormat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reactor path '%s' is not accessible: %w", path, err)
	}
	if info.IsDir() {
		return schema.PomFormat, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".pom":
		return schema.PomFormat, nil
	case ".yaml", ".yml":
		return schema.YAMLFormat, nil
	case ".json":
		return schema.JSONFormat, nil
	default:
		return "", fmt.Errorf("cannot detect reactor format of '%s'; use --reactor-format", path)
	}
}
