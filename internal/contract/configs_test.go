package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/snapguard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation against dir.
func validInput(dir string) *ConfigRawInput {
	return &ConfigRawInput{
		ReactorPathStr: dir,
		Output:         "text",
		Workers:        1,
		Emoji:          "no",
		Color:          "yes",
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

func TestProcessAndValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{
			name:   "valid minimal config",
			mutate: func(*ConfigRawInput) {},
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: "invalid output format",
		},
		{
			name:        "parquet without output file",
			mutate:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: "--output-file is required",
		},
		{
			name: "parquet with output file",
			mutate: func(in *ConfigRawInput) {
				in.Output = "parquet"
				in.OutputFile = filepath.Join(dir, "out.parquet")
			},
		},
		{
			name:        "zero workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: "workers must be greater than 0",
		},
		{
			name:        "too many workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = MaxWorkers + 1 },
			expectError: "cannot exceed",
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: "invalid --color value",
		},
		{
			name:        "invalid log level",
			mutate:      func(in *ConfigRawInput) { in.LogLevel = "trace" },
			expectError: "invalid log level",
		},
		{
			name:        "invalid log format",
			mutate:      func(in *ConfigRawInput) { in.LogFormat = "pretty" },
			expectError: "invalid log format",
		},
		{
			name:        "invalid reactor format",
			mutate:      func(in *ConfigRawInput) { in.ReactorFormat = "gradle" },
			expectError: "invalid reactor format",
		},
		{
			name:        "integration test without self plugin",
			mutate:      func(in *ConfigRawInput) { in.IntegrationTest = true },
			expectError: "--self-plugin cannot be empty",
		},
		{
			name:        "malformed self plugin",
			mutate:      func(in *ConfigRawInput) { in.SelfPlugin = "just-an-artifact" },
			expectError: "invalid self plugin",
		},
		{
			name:        "invalid history backend",
			mutate:      func(in *ConfigRawInput) { in.HistoryBackend = "oracle" },
			expectError: "invalid history backend",
		},
		{
			name:        "mysql backend without connection",
			mutate:      func(in *ConfigRawInput) { in.HistoryBackend = "mysql" },
			expectError: "history-db-connect is required",
		},
		{
			name:        "missing reactor path",
			mutate:      func(in *ConfigRawInput) { in.ReactorPathStr = filepath.Join(dir, "nope") },
			expectError: "is not accessible",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(dir)
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	dir := t.TempDir()
	input := validInput(dir)
	input.LogLevel = ""
	input.LogFormat = ""
	input.SelfPlugin = "  io.github.huangsam:snapguard-maven-plugin:1.0.0  "
	input.IntegrationTest = true

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	absDir, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, absDir, cfg.ReactorPath)
	assert.Equal(t, schema.AutoFormat, cfg.ReactorFormat)
	assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, "io.github.huangsam:snapguard-maven-plugin:1.0.0", cfg.SelfPlugin)
	assert.True(t, cfg.IntegrationTest)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
}

func TestProcessAndValidate_FilePath(t *testing.T) {
	dir := t.TempDir()
	pom := filepath.Join(dir, "pom.xml")
	require.NoError(t, os.WriteFile(pom, []byte("<project/>"), 0o644))

	input := validInput(pom)
	input.ReactorFormat = "POM"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, pom, cfg.ReactorPath)
	assert.Equal(t, schema.PomFormat, cfg.ReactorFormat)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/snapguard", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/snapguard", true},
		{"mysql missing db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=u password=p dbname=snapguard", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=snapguard", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseHistoryBackend(t *testing.T) {
	backend, err := ParseHistoryBackend("")
	require.NoError(t, err)
	assert.Equal(t, schema.NoneBackend, backend)

	backend, err = ParseHistoryBackend(" SQLite ")
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, backend)

	_, err = ParseHistoryBackend("redis")
	assert.Error(t, err)
}

func TestDefaultSelfPlugin(t *testing.T) {
	assert.Equal(t, "io.github.huangsam:snapguard-maven-plugin:dev", DefaultSelfPlugin("dev"))
}

func TestConfigCloneAndParams(t *testing.T) {
	cfg := &Config{
		ReactorPath:     "/tmp/reactor",
		ReactorFormat:   schema.PomFormat,
		SelfPlugin:      "g:a:1",
		IntegrationTest: true,
		Workers:         4,
	}
	clone := cfg.Clone()
	clone.Workers = 8
	assert.Equal(t, 4, cfg.Workers)

	params := cfg.Params()
	assert.Equal(t, "/tmp/reactor", params["reactor_path"])
	assert.Equal(t, "pom", params["reactor_format"])
	assert.Equal(t, true, params["integration_test"])
	assert.Equal(t, 4, params["workers"])
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "snap"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "snap", profile.Prefix)
}

func TestRevalidateCheck(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{ReactorPath: dir, Workers: 2, ReactorFormat: "YAML"}
	require.NoError(t, RevalidateCheck(cfg))
	assert.Equal(t, schema.YAMLFormat, cfg.ReactorFormat)
	assert.Equal(t, dir, cfg.ReactorPath)

	cfg = &Config{ReactorPath: dir, Workers: 1}
	require.NoError(t, RevalidateCheck(cfg))
	assert.Equal(t, schema.AutoFormat, cfg.ReactorFormat)

	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{"bad workers", &Config{ReactorPath: dir}, "workers must be greater than 0"},
		{"bad format", &Config{ReactorPath: dir, Workers: 1, ReactorFormat: "gradle"}, "invalid reactor format"},
		{"self plugin required", &Config{ReactorPath: dir, Workers: 1, IntegrationTest: true}, "--self-plugin cannot be empty"},
		{"missing path", &Config{ReactorPath: filepath.Join(dir, "absent"), Workers: 1}, "is not accessible"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RevalidateCheck(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
