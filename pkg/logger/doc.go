// Package logger builds slog loggers for scankit binaries and provides the
// attribute constructors used across the scanner packages.
//
// New creates a *slog.Logger configured by Option functions: output format
// (text or JSON), minimum level, static attributes and ContextExtractor
// callbacks that inject values stored in a context.Context, such as the scan
// ID assigned by the HTTP service.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(logger.ParseEnvironment(cfg.Env), "scankit"),
//	    logger.WithContextExtractors(scanapi.ScanIDExtractor()),
//	)
//	log.InfoContext(ctx, "scan finished",
//	    logger.Machine("csv-record"),
//	    logger.Steps(res.Steps),
//	    logger.Duration(time.Since(start)),
//	)
//
// Error, Errors, Machine and ScanID return an empty attribute for empty
// input, which slog drops, so callers need no nil checks.
package logger
