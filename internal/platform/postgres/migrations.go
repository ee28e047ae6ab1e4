package postgres

import "embed"

// MigrationsDir is the directory of the embedded goose migrations within MigrationsFS.
const MigrationsDir = "migrations"

// MigrationTableName is the goose version table used by this service.
const MigrationTableName = "schema_migrations"

// MigrationsFS holds the schema and seed migrations.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
