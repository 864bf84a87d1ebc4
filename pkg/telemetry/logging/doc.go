// Package logging provides structured logging for the bitmark tools.
//
// The logger wraps log/slog and supports three formats:
//   - json: one JSON object per line
//   - text: logfmt-style key=value pairs
//   - console: like text, without timestamps
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
//	log := logger.Component("watch")
//	log.Info("recompiled", "file", path, "bits", n)
//
// The Context variants add the file and record ID stored with WithFile and
// WithRecordID, and the trace and span IDs of an active span.
//
// The compiler itself never logs; it reports diagnostics. Logging is for the
// command-line tools and the long-running watch loop.
package logging
