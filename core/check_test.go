package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/snapguard/internal/contract"
	"github.com/huangsam/snapguard/internal/reactor"
	"github.com/huangsam/snapguard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zapcore"
)

// runCheck runs the check against an in-memory reactor and reports the verdict.
func runCheck(t *testing.T, cfg *contract.Config, projects ...schema.Project) (*schema.CheckResult, []string, error) {
	t.Helper()
	loader := &contract.MockReactorLoader{}
	loader.On("Load", mock.Anything).Return(projects, nil)
	log, logs := observedLogger()

	result, err := RunSnapshotCheck(context.Background(), cfg, loader, nil, log)
	require.NoError(t, err)
	loader.AssertExpectations(t)

	verdict := ReportVerdict(log, result.Projects, !result.Passed)
	return result, messages(logs, zapcore.ErrorLevel), verdict
}

func TestSnapshotCheck_Scenarios(t *testing.T) {
	t.Run("project without build passes", func(t *testing.T) {
		log, logs := observedLogger()
		loader := &contract.MockReactorLoader{}
		loader.On("Load", mock.Anything).Return([]schema.Project{project(t, "g:app:1.0", nil)}, nil)

		result, err := RunSnapshotCheck(context.Background(), &contract.Config{Workers: 1}, loader, nil, log)
		require.NoError(t, err)
		assert.True(t, result.Passed)
		require.NoError(t, ReportVerdict(log, result.Projects, !result.Passed))

		assert.Equal(t, []string{checkStartMessage, passMessage}, messages(logs, zapcore.InfoLevel))
		assert.Empty(t, messages(logs, zapcore.ErrorLevel))
	})

	t.Run("direct snapshot dependency fails", func(t *testing.T) {
		result, errorLines, err := runCheck(t, &contract.Config{Workers: 1},
			project(t, "g:app:1.0", directBuild(plugin(t, pluginA, libSnapshot))))

		require.ErrorIs(t, err, ErrReleaseBlocked)
		assert.False(t, result.Passed)
		assert.Equal(t, map[string][]string{pluginA: {libSnapshot}}, result.Projects[0].Violations.Map())
		assert.Contains(t, errorLines, "\t\t\t[PLUGIN] "+pluginA)
		assert.Contains(t, errorLines, "\t\t\t\t[DEPENDENCY] "+libSnapshot)
	})

	t.Run("pair repeated in profile is reported once", func(t *testing.T) {
		result, errorLines, err := runCheck(t, &contract.Config{Workers: 1},
			project(t, "g:app:1.0",
				directBuild(plugin(t, pluginA, libSnapshot)),
				managedProfile("release", plugin(t, pluginA, libSnapshot)),
			))

		require.ErrorIs(t, err, ErrReleaseBlocked)
		assert.Equal(t, 1, result.TotalViolations)
		assert.Equal(t, []string{libSnapshot}, result.Projects[0].Violations.Dependencies(pluginA))
		count := 0
		for _, line := range errorLines {
			if line == "\t\t\t\t[DEPENDENCY] "+libSnapshot {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("only violating project is reported", func(t *testing.T) {
		result, errorLines, err := runCheck(t, &contract.Config{Workers: 1},
			project(t, "g:a:1.0", directBuild(plugin(t, pluginA, "group:lib:2.0"))),
			project(t, "g:b:1.0", directBuild(plugin(t, pluginA, libSnapshot))),
		)

		require.ErrorIs(t, err, ErrReleaseBlocked)
		assert.Equal(t, 2, result.TotalProjects)
		assert.Contains(t, errorLines, "\t\t[PROJECT] g:b:1.0")
		assert.NotContains(t, errorLines, "\t\t[PROJECT] g:a:1.0")
	})

	t.Run("self plugin exempt in integration test mode", func(t *testing.T) {
		cfg := &contract.Config{Workers: 1, SelfPlugin: selfPlugin, IntegrationTest: true}
		result, errorLines, err := runCheck(t, cfg,
			project(t, "g:app:1.0", directBuild(plugin(t, selfPlugin, "g:fixture:1-SNAPSHOT"))))

		require.NoError(t, err)
		assert.True(t, result.Passed)
		assert.Empty(t, errorLines)
	})

	t.Run("other plugin not exempt in integration test mode", func(t *testing.T) {
		cfg := &contract.Config{Workers: 1, SelfPlugin: selfPlugin, IntegrationTest: true}
		result, _, err := runCheck(t, cfg,
			project(t, "g:app:1.0", directBuild(plugin(t, pluginA, libSnapshot))))

		require.ErrorIs(t, err, ErrReleaseBlocked)
		assert.True(t, result.Projects[0].Violations.HasKey(pluginA))
	})
}

func TestRunSnapshotCheck_Errors(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := RunSnapshotCheck(context.Background(), nil, &contract.MockReactorLoader{}, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a configuration")
	})

	t.Run("integration test without self plugin", func(t *testing.T) {
		cfg := &contract.Config{IntegrationTest: true}
		_, err := RunSnapshotCheck(context.Background(), cfg, &contract.MockReactorLoader{}, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a self plugin identity")
	})

	t.Run("loader failure", func(t *testing.T) {
		loader := &contract.MockReactorLoader{}
		loader.On("Load", mock.Anything).Return(nil, errors.New("broken pom"))
		cfg := &contract.Config{ReactorPath: "/repo"}

		_, err := RunSnapshotCheck(context.Background(), cfg, loader, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `failed to load reactor from "/repo"`)
		assert.Contains(t, err.Error(), "broken pom")
	})

	t.Run("missing reactor path without loader", func(t *testing.T) {
		_, err := RunSnapshotCheck(context.Background(), &contract.Config{}, nil, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a reactor path")
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		loader := &contract.MockReactorLoader{}
		loader.On("Load", mock.Anything).Return([]schema.Project{project(t, "g:a:1.0", nil)}, nil)

		result, err := RunSnapshotCheck(ctx, &contract.Config{Workers: 1}, loader, nil, nil)
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, result)
	})
}

func TestRunSnapshotCheck_Span(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	loader := &contract.MockReactorLoader{}
	loader.On("Load", mock.Anything).Return([]schema.Project{
		project(t, "g:a:1.0", directBuild(plugin(t, pluginA, libSnapshot))),
	}, nil)
	result, err := RunSnapshotCheck(context.Background(), &contract.Config{Workers: 1}, loader, nil, nil)
	require.NoError(t, err)

	var check sdktrace.ReadOnlySpan
	scans := 0
	for _, span := range sr.Ended() {
		switch span.Name() {
		case checkSpanName:
			check = span
		case scanProjectSpanName:
			scans++
			assert.Nil(t, check, "scan spans end before the check span")
		}
	}
	require.NotNil(t, check)
	assert.Equal(t, 1, scans)

	attrs := map[string]any{}
	for _, kv := range check.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, result.RunID, attrs["snapguard.run_id"])
	assert.Equal(t, false, attrs["snapguard.passed"])
	assert.Equal(t, int64(1), attrs["snapguard.violations"])

	t.Run("error status", func(t *testing.T) {
		_, err := RunSnapshotCheck(context.Background(), nil, nil, nil, nil)
		require.Error(t, err)
		spans := sr.Ended()
		last := spans[len(spans)-1]
		assert.Equal(t, checkSpanName, last.Name())
		assert.Equal(t, codes.Error, last.Status().Code)
	})
}

const checkDescriptor = `projects:
  - group_id: g
    artifact_id: clean
    version: "1.0"
  - group_id: g
    artifact_id: dirty
    version: "1.0"
    build:
      plugins:
        - group_id: group
          artifact_id: pluginA
          version: "1.0"
          dependencies:
            - group_id: group
              artifact_id: lib
              version: 2.0-SNAPSHOT
`

func TestExecuteSnapshotCheck_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	descriptor := filepath.Join(dir, "reactor.yaml")
	require.NoError(t, os.WriteFile(descriptor, []byte(checkDescriptor), 0o644))
	outFile := filepath.Join(dir, "result.json")

	cfg := &contract.Config{
		ReactorPath:   descriptor,
		ReactorFormat: schema.AutoFormat,
		Workers:       2,
		Output:        schema.JSONOut,
		OutputFile:    outFile,
	}
	err := ExecuteSnapshotCheck(context.Background(), cfg, nil, nil)
	require.ErrorIs(t, err, ErrReleaseBlocked)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var decoded struct {
		Passed          bool `json:"passed"`
		TotalProjects   int  `json:"total_projects"`
		TotalViolations int  `json:"total_violations"`
		Projects        []struct {
			Project    string              `json:"project"`
			Violations map[string][]string `json:"violations"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Passed)
	assert.Equal(t, 2, decoded.TotalProjects)
	assert.Equal(t, 1, decoded.TotalViolations)
	require.Len(t, decoded.Projects, 2)
	assert.Empty(t, decoded.Projects[0].Violations)
	assert.Equal(t, map[string][]string{pluginA: {libSnapshot}}, decoded.Projects[1].Violations)
}

func TestExecuteSnapshotCheck_Pass(t *testing.T) {
	dir := t.TempDir()
	descriptor := filepath.Join(dir, "reactor.yaml")
	require.NoError(t, os.WriteFile(descriptor, []byte("projects:\n  - group_id: g\n    artifact_id: clean\n    version: \"1.0\"\n"), 0o644))

	cfg := &contract.Config{
		ReactorPath:   descriptor,
		ReactorFormat: schema.YAMLFormat,
		Workers:       1,
		Output:        schema.CSVOut,
		OutputFile:    filepath.Join(dir, "result.csv"),
	}
	require.NoError(t, ExecuteSnapshotCheck(context.Background(), cfg, nil, nil))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "project,plugin,dependency\n", string(data))
}

func TestExecuteSnapshotCheck_OutputFailureKeepsVerdict(t *testing.T) {
	dir := t.TempDir()
	descriptor := filepath.Join(dir, "reactor.yaml")
	require.NoError(t, os.WriteFile(descriptor, []byte(checkDescriptor), 0o644))

	cfg := &contract.Config{
		ReactorPath:   descriptor,
		ReactorFormat: schema.YAMLFormat,
		Workers:       1,
		Output:        schema.JSONOut,
		OutputFile:    filepath.Join(dir, "missing", "result.json"),
	}
	err := ExecuteSnapshotCheck(context.Background(), cfg, nil, nil)
	require.ErrorIs(t, err, ErrReleaseBlocked)
	assert.Contains(t, err.Error(), "failed to write check output")

	var blocked *ReleaseBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 1, blocked.Violations)
}

const (
	inheritedBasePom = `<project>
  <groupId>g</groupId>
  <artifactId>base</artifactId>
  <version>1</version>
  <packaging>pom</packaging>
  <build>
    <pluginManagement>
      <plugins>
        <plugin>
          <groupId>g</groupId>
          <artifactId>p</artifactId>
          <version>1.0</version>
          <dependencies>
            <dependency>
              <groupId>g</groupId>
              <artifactId>lib</artifactId>
              <version>2.0-SNAPSHOT</version>
            </dependency>
          </dependencies>
        </plugin>
      </plugins>
    </pluginManagement>
  </build>
</project>`

	inheritedAggPom = `<project>
  <groupId>g</groupId>
  <artifactId>agg</artifactId>
  <version>1</version>
  <packaging>pom</packaging>
  <modules>
    <module>../child</module>
  </modules>
</project>`

	inheritedChildPom = `<project>
  <parent>
    <groupId>g</groupId>
    <artifactId>base</artifactId>
    <version>1</version>
    <relativePath>../base/pom.xml</relativePath>
  </parent>
  <artifactId>child</artifactId>
  <build>
    <plugins>
      <plugin>
        <groupId>g</groupId>
        <artifactId>p</artifactId>
      </plugin>
    </plugins>
  </build>
</project>`
)

func TestSnapshotCheck_InheritedParentBuild(t *testing.T) {
	root := t.TempDir()
	for name, content := range map[string]string{
		"base":  inheritedBasePom,
		"agg":   inheritedAggPom,
		"child": inheritedChildPom,
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, name, "pom.xml"), []byte(content), 0o644))
	}

	log, logs := observedLogger()
	loader := reactor.NewPomLoader(filepath.Join(root, "agg"), log)
	result, err := RunSnapshotCheck(context.Background(), &contract.Config{Workers: 1}, loader, nil, log)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	err = ReportVerdict(log, result.Projects, !result.Passed)
	require.ErrorIs(t, err, ErrReleaseBlocked)

	errorLines := messages(logs, zapcore.ErrorLevel)
	assert.Equal(t, []string{
		failHeader,
		"\t\t[PROJECT] g:child:1",
		"\t\t\t[PLUGIN] g:p:1.0",
		"\t\t\t\t[DEPENDENCY] g:lib:2.0-SNAPSHOT",
	}, errorLines)
}
