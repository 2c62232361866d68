// Package pipeline defines the error taxonomy shared by the conversion steps
// and the batch driver.
//
// Errors fall into two classes. Skippable errors (a missing motion source, a
// source without animation) degrade a job's clip set but never fail the job;
// they are caught at per-source scope. Job-fatal errors (no skeleton in the
// base asset, a failed export) fail the job but never the batch; they are
// caught by the driver. Wrap tags errors with one of the sentinel markers so
// the driver can classify them with errors.Is.
package pipeline
