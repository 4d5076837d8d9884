// Package logger provides structured logging for fetchkit using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers carrying structured fields. The request engine
// logs each redirect hop and transport failure at debug and warn level.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("fetchkit").WithComponent("httpclient")
//	log.Debug("hop", logger.Fields(logger.FieldURL, u, logger.FieldStatus, 302))
package logger
