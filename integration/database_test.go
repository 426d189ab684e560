//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestSnapguardWithMySQL runs the history lifecycle against a MySQL backend.
func TestSnapguardWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "snapguard",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/snapguard", host, port.Port())
	runHistoryLifecycle(t, []string{
		"SNAPGUARD_HISTORY_BACKEND=mysql",
		"SNAPGUARD_HISTORY_DB_CONNECT=" + connStr,
	}, "mysql")
}

// TestSnapguardWithPostgres runs the history lifecycle against a PostgreSQL backend.
func TestSnapguardWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runHistoryLifecycle(t, []string{
		"SNAPGUARD_HISTORY_BACKEND=postgresql",
		"SNAPGUARD_HISTORY_DB_CONNECT=" + connStr,
	}, "postgresql")
}

// runHistoryLifecycle clears, migrates, records two checks and reads them back.
func runHistoryLifecycle(t *testing.T, env []string, backend string) {
	t.Helper()
	home := t.TempDir()
	clean := writeReactor(t, "1.2.0")
	dirty := writeReactor(t, "1.3.0-SNAPSHOT")

	require.Equal(t, 0, runSnapguard(t, home, env, "history", "clear").ExitCode)
	require.Equal(t, 0, runSnapguard(t, home, env, "history", "migrate").ExitCode)

	assert.Equal(t, 0, runSnapguard(t, home, env, "check", clean).ExitCode)
	assert.Equal(t, 1, runSnapguard(t, home, env, "check", dirty, "--workers", "2").ExitCode)

	status := runSnapguard(t, home, env, "history", "status")
	require.Equal(t, 0, status.ExitCode)
	assert.Contains(t, status.Stdout, "History Backend: "+backend)
	assert.Contains(t, status.Stdout, "Total Runs: 2")
	assert.Contains(t, status.Stdout, "Failed Runs: 1")

	// Rolling back drops the schema, the next check recreates it
	require.Equal(t, 0, runSnapguard(t, home, env, "history", "migrate", "--target-version", "0").ExitCode)
	assert.Equal(t, 0, runSnapguard(t, home, env, "check", clean).ExitCode)
}
