// Package rig holds the in-memory model the conversion pipeline operates on:
// scenes, skeletons, meshes with skin bindings, and animation clips.
//
// A Scene is an explicit value owned by the batch driver for exactly one job;
// there is no package-level scene state, and job isolation is achieved by
// constructing a fresh Scene per job rather than resetting ambient state.
//
// Bones carry a stable BoneID assigned at load time. The human-readable name
// is a renamable label; skin bindings reference bones by ID and only mirror
// the label for interchange, so renaming a bone can never desynchronize the
// skin. Use Scene.RenameBone to keep the mirrored labels in step.
package rig
