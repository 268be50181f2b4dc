// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// startup retries, goose schema migrations routed through the application
// logger, a readiness probe, and error helpers for the SQLSTATE codes
// repositories care about.
package pg
