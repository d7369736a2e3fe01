// Package observability provides structured logging and metrics for the
// user-auth service.
//
// This package implements:
//   - zap logger construction from configuration (JSON or console output)
//   - request-scoped logger fields (request ID)
//   - Prometheus collectors for authentication outcomes and HTTP traffic
package observability
