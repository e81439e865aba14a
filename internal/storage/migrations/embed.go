// Package migrations carries the schema for both backends compiled
// into the binary: relational reference tables in PostgreSQL,
// analytical tables in ClickHouse.
package migrations

import "embed"

// PostgresFS holds the relational schema files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the analytical schema files.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
