// Package clips extracts animation clips from motion sources and merges them
// onto a target skeleton as ordered, independently selectable tracks.
//
// The importer loads each source into a scratch scene, keeps only the single
// active clip it finds, and discards the rest of the source; its failures are
// skippable so one bad motion file degrades the clip set without failing the
// job. The merger owns the track-order contract: track order equals input
// order, and the first merged clip becomes the skeleton's active clip.
package clips
