// Package httpserver wraps net/http with graceful shutdown, sane timeout
// defaults, and probe handlers for liveness and readiness checks.
package httpserver
