// Package gltfio decodes GLB files into scenes and encodes scenes back to
// GLB. It is the only package that touches the wire format; everything above
// it works on scene-graph types.
//
// Coordinate convention: scenes are Z-up in memory. The decoder rotates root
// objects from glTF's Y-up on load and the encoder rotates them back on save,
// so the conversion is applied exactly once in each direction.
package gltfio
