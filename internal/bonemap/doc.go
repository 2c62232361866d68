// Package bonemap holds the versioned correspondence table between bone names
// authored in the mixamo convention and the canonical Y-Bot rig names the
// runtime expects.
//
// Translate is total and idempotent: names outside the table pass through
// unchanged, and already-canonical names are never rewritten again, so running
// normalization twice is safe. Apply rewrites every name-based reference in a
// scene, including the skin-binding group labels, not just the skeleton's own
// bone list.
//
// Any consumer interpreting bone names authored in the source convention must
// use this table (see Version) to stay consistent with exported assets.
package bonemap
