// Package logging builds slog loggers for the CLI and batch driver.
//
// It supports a human-oriented console format and a machine-oriented JSON
// format, exposes attr helpers plus standardized field keys so every
// component logs job and clip context the same way, and provides a no-op
// logger for tests.
package logging
