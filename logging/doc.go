// Package logging provides the process-wide log sink of the service: a
// concurrency-safe set of destinations built on rs/zerolog, each with its own
// minimum level and encoding.
//
// Destinations
//   - console: only outside production unless ForceConsole is set; pretty
//     ("<timestamp> [<level>]: <message>" plus indented metadata) or JSON
//   - combined-YYYY-MM-DD.log: every record at or above the configured level
//   - error-YYYY-MM-DD.log: error records only, whatever the configured level
//   - exceptions-/rejections-YYYY-MM-DD.log: one record per captured fault,
//     bypassing the level filter
//
// File destinations are always JSON, rotate daily and by size via lumberjack,
// and are written through non-blocking diode buffers that Close drains.
//
// Levels are ordered error < warn < info < http < debug. Child loggers layer
// extra fields on top of their parent without changing it. Errors attached
// with Err carry their full cause chain, and error records holding an error
// get a stack trace.
//
// Typical usage
//
//	svc := &logging.Service{LoggingConfig: &cfg, Production: prod}
//	if err := svc.Initialize(); err != nil { panic(err) }
//	defer svc.Close()
//	defer svc.RecoverAndExit()
//
//	svc.Log(logging.InfoLevel, "Server started", logging.Fields{"port": 3000})
//	req := svc.With().Str("request_id", rid).Logger()
//	req.ErrorWith().Err(err).Msg("failed")
package logging
