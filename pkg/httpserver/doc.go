// Package httpserver runs an http.Handler with graceful shutdown,
// configurable timeouts and slog lifecycle logging.
//
// Run blocks until the context is canceled or SIGINT/SIGTERM arrives, then
// calls http.Server.Shutdown with the configured deadline so in-flight
// scans can finish. Serve does the same on a caller-supplied listener,
// which tests use to bind an ephemeral port.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// HealthCheckHandler provides liveness and readiness endpoints.
package httpserver
