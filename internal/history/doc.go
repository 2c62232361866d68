// Package history persists batch run outcomes to SQLite so past runs can be
// inspected after the process exits. Recording is best-effort reporting; a
// history failure never fails a batch.
package history
