package testsupport

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"rigprep/internal/rig"
)

// RiggedScene builds a minimal importable character: an armature with a
// wrapper joint above the hips, one skinned mesh, and a camera that
// normalization is expected to discard.
func RiggedScene(t testing.TB) *rig.Scene {
	t.Helper()
	scene := rig.NewScene()

	sk := rig.NewSkeleton("ybot_armature")
	wrapperBind := rig.IdentityTransform()
	wrapperBind.Translation = mgl64.Vec3{0, 0, 0.1}
	wrapper, err := sk.AddBone("_rootJoint", rig.NoBone, wrapperBind)
	if err != nil {
		t.Fatalf("AddBone: %v", err)
	}
	hipsBind := rig.IdentityTransform()
	hipsBind.Translation = mgl64.Vec3{0, 0, 0.9}
	hips, err := sk.AddBone("mixamorig:Hips", wrapper, hipsBind)
	if err != nil {
		t.Fatalf("AddBone: %v", err)
	}

	skelObj := scene.Add(&rig.Object{
		Kind: rig.KindSkeleton, Name: "ybot_armature",
		Local: rig.IdentityTransform(), Skeleton: sk,
	})

	mesh := &rig.Mesh{
		Name:      "Body",
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
		Joints:    [][4]uint16{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		Weights:   [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}},
	}
	mesh.Binding = rig.SkinBinding{
		Skeleton: sk,
		Groups: []rig.VertexGroup{{
			Bone: hips, Name: "mixamorig:Hips",
			Weights: []rig.VertexWeight{{Vertex: 0, Weight: 1}, {Vertex: 1, Weight: 1}, {Vertex: 2, Weight: 1}},
		}},
	}
	scene.Add(&rig.Object{
		Kind: rig.KindMesh, Name: "Body", Parent: skelObj,
		Local: rig.IdentityTransform(), Mesh: mesh,
	})
	scene.Add(&rig.Object{Kind: rig.KindOther, Name: "Camera", Local: rig.IdentityTransform()})
	return scene
}

// MotionScene builds a motion source holding one active clip with a single
// hips translation curve spanning the given frame range.
func MotionScene(t testing.TB, start, end float64) *rig.Scene {
	t.Helper()
	scene := rig.NewScene()

	sk := rig.NewSkeleton("Armature")
	if _, err := sk.AddBone("mixamorig:Hips", rig.NoBone, rig.IdentityTransform()); err != nil {
		t.Fatalf("AddBone: %v", err)
	}

	clip := &rig.AnimationClip{Name: "Animation"}
	clip.Curves = []rig.BoneCurve{{
		Bone: "mixamorig:Hips",
		Path: rig.PathTranslation,
		Keys: []rig.Keyframe{
			{Frame: start, Value: []float64{0, 0, 0.9}},
			{Frame: end, Value: []float64{0, 0, 0.95}},
		},
	}}
	clip.RecomputeFrameRange()
	sk.Animation.Active = clip

	scene.Add(&rig.Object{
		Kind: rig.KindSkeleton, Name: "Armature",
		Local: rig.IdentityTransform(), Skeleton: sk,
	})
	return scene
}
