// Package postgres provides the PostgreSQL implementation of the city
// repository defined in the internal/store package. Queries are built with
// squirrel and run on a pgx connection pool; pending repository changes are
// committed in a single transaction. The schema and its seed data ship as
// embedded goose migrations.
package postgres
