package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for check history.
	DatabaseBackend string

	// ReactorFormat represents how the reactor is described on disk.
	ReactorFormat string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	CSVOut     OutputMode = "csv"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All reactor formats supported.
const (
	AutoFormat ReactorFormat = "auto" // default
	PomFormat  ReactorFormat = "pom"
	YAMLFormat ReactorFormat = "yaml"
	JSONFormat ReactorFormat = "json"
)

// SnapshotQualifier is the version suffix that marks a mutable artifact.
const SnapshotQualifier = "-SNAPSHOT"

// DefaultDependencyType is the packaging type assumed when a dependency omits one.
const DefaultDependencyType = "jar"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	JSONOut:    {},
	CSVOut:     {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidReactorFormats lists all valid reactor formats.
var ValidReactorFormats = map[ReactorFormat]struct{}{
	AutoFormat: {},
	PomFormat:  {},
	YAMLFormat: {},
	JSONFormat: {},
}
