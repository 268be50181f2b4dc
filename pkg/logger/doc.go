// Package logger builds configured slog.Logger instances: JSON or text
// output, per-environment defaults, static service attributes, and optional
// context extractors that pull request-scoped values (request IDs, user IDs)
// into every record.
package logger
