package bonemap

import (
	"fmt"

	"rigprep/internal/rig"
)

// Apply retargets every bone name in the scene to the canonical convention:
// skeleton bones, skin-binding group labels (via Scene.RenameBone), and the
// bone references inside clip curves. It returns the number of renamed bones.
//
// Apply is safe to run repeatedly; a second pass finds only canonical names
// and renames nothing.
func Apply(scene *rig.Scene) (int, error) {
	skelObj, ok := scene.SkeletonObject()
	if !ok {
		return 0, nil
	}
	skeleton := skelObj.Skeleton

	renamed := 0
	for _, bone := range skeleton.Bones() {
		target := Translate(bone.Name)
		if target == bone.Name {
			continue
		}
		if err := scene.RenameBone(skeleton, bone.ID, target); err != nil {
			return renamed, fmt.Errorf("rename bone %q: %w", bone.Name, err)
		}
		renamed++
	}

	for _, track := range skeleton.Animation.Tracks {
		ApplyToClip(track.Clip)
	}
	return renamed, nil
}

// ApplyToClip retargets the bone references inside a clip's curves. Clips are
// extracted from motion sources authored in the source convention, while the
// target skeleton is canonical; without this pass the merged curves would
// reference bones that no longer exist.
func ApplyToClip(clip *rig.AnimationClip) {
	if clip == nil {
		return
	}
	for i := range clip.Curves {
		clip.Curves[i].Bone = Translate(clip.Curves[i].Bone)
	}
}
