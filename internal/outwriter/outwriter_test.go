package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failedResult returns a result with one clean and one failing project.
func failedResult() *schema.CheckResult {
	violations := schema.NewViolationSet()
	violations.Put("group:pluginA:1.0", "group:lib:2.0-SNAPSHOT", "group:aaa:1-SNAPSHOT")
	return &schema.CheckResult{
		RunID:  "run-1",
		Passed: false,
		Projects: []schema.ProjectViolations{
			schema.NewProjectViolations(schema.Project{Coordinates: schema.Coordinates{GroupID: "g", ArtifactID: "clean", Version: "1.0"}}, nil),
			schema.NewProjectViolations(schema.Project{Coordinates: schema.Coordinates{GroupID: "g", ArtifactID: "dirty", Version: "1.0"}}, violations),
		},
		TotalProjects:   2,
		TotalPlugins:    3,
		TotalViolations: 2,
		Duration:        250 * time.Millisecond,
	}
}

// passedResult returns a clean result.
func passedResult() *schema.CheckResult {
	return &schema.CheckResult{
		RunID:         "run-2",
		Passed:        true,
		Projects:      []schema.ProjectViolations{schema.NewProjectViolations(schema.Project{}, nil)},
		TotalProjects: 1,
		Duration:      time.Second,
	}
}

func TestWriteCheckTable(t *testing.T) {
	t.Run("failed", func(t *testing.T) {
		cfg := &contract.Config{Workers: 4, Width: 200, HistoryBackend: schema.SQLiteBackend}
		var buf bytes.Buffer
		require.NoError(t, writeCheckTable(&buf, failedResult(), cfg))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "Snapshot plugin dependency check: FAIL\n"))
		assert.Contains(t, out, "g:dirty:1.0")
		assert.NotContains(t, out, "g:clean:1.0")
		assert.Contains(t, out, "group:pluginA:1.0")
		assert.Contains(t, out, "group:lib:2.0-SNAPSHOT")
		assert.Less(t, strings.Index(out, "group:aaa:1-SNAPSHOT"), strings.Index(out, "group:lib:2.0-SNAPSHOT"), "rows are sorted")
		assert.Contains(t, out, "Checked 2 projects and 3 plugin declarations, found 2 SNAPSHOT plugin dependencies in 1 projects")
		assert.Contains(t, out, "Check completed in 250ms with 4 workers. History backend: sqlite")
	})

	t.Run("passed with emojis", func(t *testing.T) {
		cfg := &contract.Config{Workers: 1, Width: 80, UseEmojis: true}
		var buf bytes.Buffer
		require.NoError(t, writeCheckTable(&buf, passedResult(), cfg))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "✅ Snapshot plugin dependency check: PASS\n"))
		assert.NotContains(t, out, "Dependency", "no table for a clean reactor")
		assert.Contains(t, out, "History backend: none")
	})

	t.Run("narrow terminal truncates identities", func(t *testing.T) {
		result := failedResult()
		long := schema.NewViolationSet()
		long.Put("org.example.very.long.group:very-long-plugin-artifact:1.0.0", "org.example.very.long.group:dependency:9.9.9-SNAPSHOT")
		result.Projects[1].Violations = long
		cfg := &contract.Config{Workers: 1, Width: 40}

		var buf bytes.Buffer
		require.NoError(t, writeCheckTable(&buf, result, cfg))
		assert.Contains(t, buf.String(), "...")
		assert.Contains(t, buf.String(), "9-SNAPSHOT", "the version tail is kept")
	})
}

func TestWriteJSONResultsForCheck(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONResultsForCheck(&buf, failedResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, false, decoded["passed"])
	projects, ok := decoded["projects"].([]any)
	require.True(t, ok)
	require.Len(t, projects, 2)
	dirty := projects[1].(map[string]any)
	assert.Equal(t, "g:dirty:1.0", dirty["project"])
	assert.Equal(t, map[string]any{
		"group:pluginA:1.0": []any{"group:aaa:1-SNAPSHOT", "group:lib:2.0-SNAPSHOT"},
	}, dirty["violations"])
	assert.True(t, strings.Contains(buf.String(), "\n  \""), "indented with two spaces")
}

func TestWriteCSVResultsForCheck(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVResultsForCheck(&buf, failedResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"project", "plugin", "dependency"},
		{"g:dirty:1.0", "group:pluginA:1.0", "group:aaa:1-SNAPSHOT"},
		{"g:dirty:1.0", "group:pluginA:1.0", "group:lib:2.0-SNAPSHOT"},
	}, records)
}

func TestWriteCheckResult(t *testing.T) {
	dir := t.TempDir()

	t.Run("nil result", func(t *testing.T) {
		assert.Error(t, WriteCheckResult(nil, &contract.Config{}))
	})

	t.Run("json file", func(t *testing.T) {
		out := filepath.Join(dir, "out.json")
		require.NoError(t, WriteCheckResult(passedResult(), &contract.Config{Output: schema.JSONOut, OutputFile: out}))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"passed": true`)
	})

	t.Run("csv file", func(t *testing.T) {
		out := filepath.Join(dir, "out.csv")
		require.NoError(t, WriteCheckResult(failedResult(), &contract.Config{Output: schema.CSVOut, OutputFile: out}))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, 3, strings.Count(string(data), "\n"))
	})

	t.Run("text file", func(t *testing.T) {
		out := filepath.Join(dir, "out.txt")
		require.NoError(t, WriteCheckResult(failedResult(), &contract.Config{Output: schema.TextOut, OutputFile: out, Width: 120, Workers: 1}))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "FAIL")
	})

	t.Run("parquet file", func(t *testing.T) {
		out := filepath.Join(dir, "out.parquet")
		require.NoError(t, WriteCheckResult(failedResult(), &contract.Config{Output: schema.ParquetOut, OutputFile: out}))
		info, err := os.Stat(out)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("parquet requires file", func(t *testing.T) {
		err := WriteCheckResult(failedResult(), &contract.Config{Output: schema.ParquetOut})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output-file is required")
	})

	t.Run("unwritable file", func(t *testing.T) {
		err := WriteCheckResult(failedResult(), &contract.Config{Output: schema.JSONOut, OutputFile: filepath.Join(dir, "missing", "out.json")})
		assert.Error(t, err)
	})
}

func TestGetMaxIdentityWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{40, minIdentityWidth},
		{100, 30},
		{400, maxIdentityWidth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, getMaxIdentityWidth(&contract.Config{Width: tt.width}))
	}
	// Without override the detected or fallback width stays in bounds
	got := getMaxIdentityWidth(&contract.Config{})
	assert.GreaterOrEqual(t, got, minIdentityWidth)
	assert.LessOrEqual(t, got, maxIdentityWidth)
}
