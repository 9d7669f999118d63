// Package app wires a deflection.Series to the HTTP API and manages the
// server lifecycle for the serve command.
//
// Middleware runs in this order:
//
//	RequestID -> RealIP -> OTel -> StructuredLogger -> Recoverer
//
// and the /api/series group adds the rate limiter and a request timeout.
// /healthz and /metrics sit outside that group so probes are never limited.
//
// Run handles SIGINT and SIGTERM: the server stops accepting connections,
// in-flight requests complete within Server.ShutdownTimeout and telemetry
// providers are flushed. Errors are returned to the caller; the package
// never calls os.Exit.
package app
