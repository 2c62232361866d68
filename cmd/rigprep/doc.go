// Command rigprep normalizes character rigs and merges animation clips onto
// them, one GLB in and one GLB out per job.
package main
