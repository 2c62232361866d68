// Package batch runs rig jobs from a worklist: normalize the base asset,
// import and merge the listed clips in order, export, record the outcome,
// and continue with the next job regardless of how the previous one ended.
//
// Each job gets a fresh scene; nothing leaks between jobs. A flock on the
// staging directory keeps concurrent batches off the same outputs.
package batch
