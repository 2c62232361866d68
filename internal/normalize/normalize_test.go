package normalize_test

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"rigprep/internal/logging"
	"rigprep/internal/normalize"
	"rigprep/internal/pipeline"
	"rigprep/internal/rig"
)

const tol = 1e-5

var opts = normalize.Options{RootName: "Armature", WrapperJoint: "_rootJoint"}

func transformAt(x, y, z float64) rig.Transform {
	t := rig.IdentityTransform()
	t.Translation = mgl64.Vec3{x, y, z}
	return t
}

// importedScene builds the shape an FBX-derived GLB typically has: a container
// node parenting the armature, a _rootJoint above the hips, a skinned mesh,
// and a camera that should not survive normalization.
func importedScene(t *testing.T) (*rig.Scene, *rig.Object, rig.BoneID) {
	t.Helper()
	scene := rig.NewScene()

	container := scene.Add(&rig.Object{Kind: rig.KindOther, Name: "fbx_scene", Local: rig.Transform{
		Translation: mgl64.Vec3{0, 0, 2},
		Rotation:    mgl64.QuatRotate(0.4, mgl64.Vec3{0, 1, 0}),
		Scale:       mgl64.Vec3{1, 1, 1},
	}})

	sk := rig.NewSkeleton("ybot_armature")
	wrapper, err := sk.AddBone("_rootJoint", rig.NoBone, transformAt(0, 0.2, 0))
	if err != nil {
		t.Fatalf("AddBone failed: %v", err)
	}
	hips, err := sk.AddBone("mixamorig:Hips", wrapper, rig.Transform{
		Translation: mgl64.Vec3{0, 0.9, 0.05},
		Rotation:    mgl64.QuatRotate(0.2, mgl64.Vec3{1, 0, 0}),
		Scale:       mgl64.Vec3{1, 1, 1},
	})
	if err != nil {
		t.Fatalf("AddBone failed: %v", err)
	}
	if _, err := sk.AddBone("mixamorig:Spine", hips, transformAt(0, 0.5, 0)); err != nil {
		t.Fatalf("AddBone failed: %v", err)
	}

	skelObj := scene.Add(&rig.Object{
		Kind: rig.KindSkeleton, Name: "ybot_armature", Parent: container,
		Local: transformAt(1, 0, 0), Skeleton: sk,
	})
	scene.Add(&rig.Object{Kind: rig.KindMesh, Name: "Body", Parent: skelObj,
		Local: rig.IdentityTransform(),
		Mesh:  &rig.Mesh{Name: "Body", Binding: rig.SkinBinding{Skeleton: sk}}})
	scene.Add(&rig.Object{Kind: rig.KindOther, Name: "Camera", Local: rig.IdentityTransform()})

	return scene, skelObj, hips
}

func TestApplyProducesCanonicalShape(t *testing.T) {
	scene, skelObj, hips := importedScene(t)
	sk := skelObj.Skeleton
	hipsWorldBefore := sk.World(hips)
	meshWorldBefore := scene.MeshObjects()[0].World()

	if err := normalize.Apply(scene, opts, logging.NewNop()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if skelObj.Name != "Armature" || sk.Name != "Armature" {
		t.Fatalf("root not renamed: object %q data %q", skelObj.Name, sk.Name)
	}
	if _, ok := sk.Lookup("_rootJoint"); ok {
		t.Fatal("synthetic wrapper joint still present")
	}
	if skelObj.Parent != nil {
		t.Fatal("skeleton object still has an external parent")
	}
	if roots := sk.Roots(); len(roots) != 1 {
		t.Fatalf("expected exactly one root bone, got %d", len(roots))
	}
	if !rig.MatApproxEqual(hipsWorldBefore, sk.World(hips), tol) {
		t.Fatal("hips world pose changed during normalization")
	}
	if !rig.MatApproxEqual(meshWorldBefore, scene.MeshObjects()[0].World(), tol) {
		t.Fatal("mesh world pose changed during normalization")
	}

	// Exactly one skeleton and its meshes survive.
	for _, o := range scene.Objects {
		if o.Kind == rig.KindOther {
			t.Fatalf("non-rig object %q survived pruning", o.Name)
		}
	}
	if len(scene.Objects) != 2 {
		t.Fatalf("expected 2 objects after pruning, got %d", len(scene.Objects))
	}
}

func TestApplyDropsWrapperVertexGroups(t *testing.T) {
	scene := rig.NewScene()
	sk := rig.NewSkeleton("ybot_armature")
	wrapper, _ := sk.AddBone("_rootJoint", rig.NoBone, transformAt(0, 0.2, 0))
	hips, _ := sk.AddBone("mixamorig:Hips", wrapper, transformAt(0, 0.9, 0))
	spine, _ := sk.AddBone("mixamorig:Spine", hips, transformAt(0, 0.5, 0))

	skelObj := scene.Add(&rig.Object{Kind: rig.KindSkeleton, Name: "ybot_armature",
		Local: rig.IdentityTransform(), Skeleton: sk})

	// Groups in skin joint order, wrapper first, the way skinned GLBs list them.
	mesh := &rig.Mesh{
		Name:      "Body",
		Positions: [][3]float32{{0, 0, 0}, {0, 1, 0}},
		Joints:    [][4]uint16{{0, 1, 0, 0}, {1, 2, 0, 0}},
		Weights:   [][4]float32{{0, 1, 0, 0}, {0.5, 0.5, 0, 0}},
		Binding: rig.SkinBinding{Skeleton: sk, Groups: []rig.VertexGroup{
			{Bone: wrapper, Name: "_rootJoint"},
			{Bone: hips, Name: "mixamorig:Hips"},
			{Bone: spine, Name: "mixamorig:Spine"},
		}},
	}
	scene.Add(&rig.Object{Kind: rig.KindMesh, Name: "Body", Parent: skelObj,
		Local: rig.IdentityTransform(), Mesh: mesh})

	if err := normalize.Apply(scene, opts, logging.NewNop()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	groups := mesh.Binding.Groups
	if len(groups) != 2 || groups[0].Bone != hips || groups[1].Bone != spine {
		t.Fatalf("wrapper group not dropped: %+v", groups)
	}
	for _, group := range groups {
		if sk.Bone(group.Bone) == nil {
			t.Fatalf("group %q references a removed bone", group.Name)
		}
	}
	if mesh.Joints[0] != [4]uint16{0, 0, 0, 0} || mesh.Joints[1] != [4]uint16{0, 1, 0, 0} {
		t.Fatalf("joint slots not remapped to surviving groups: %v", mesh.Joints)
	}
	if mesh.Weights[1][0] != 0.5 || mesh.Weights[1][1] != 0.5 {
		t.Fatalf("surviving weights disturbed: %v", mesh.Weights[1])
	}
}

func TestApplyWithoutWrapperIsNoOp(t *testing.T) {
	scene := rig.NewScene()
	sk := rig.NewSkeleton("Armature")
	hips, _ := sk.AddBone("mixamorig:Hips", rig.NoBone, transformAt(0, 1, 0))
	scene.Add(&rig.Object{Kind: rig.KindSkeleton, Name: "Armature", Local: rig.IdentityTransform(), Skeleton: sk})

	before := sk.World(hips)
	if err := normalize.Apply(scene, opts, logging.NewNop()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !rig.MatApproxEqual(before, sk.World(hips), tol) {
		t.Fatal("already-canonical skeleton was mutated")
	}
}

func TestApplyTwiceIsStable(t *testing.T) {
	scene, skelObj, hips := importedScene(t)
	if err := normalize.Apply(scene, opts, logging.NewNop()); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	world := skelObj.Skeleton.World(hips)

	if err := normalize.Apply(scene, opts, logging.NewNop()); err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if !rig.MatApproxEqual(world, skelObj.Skeleton.World(hips), tol) {
		t.Fatal("second normalization moved bones")
	}
}

func TestApplyFailsWithoutSkeleton(t *testing.T) {
	scene := rig.NewScene()
	scene.Add(&rig.Object{Kind: rig.KindMesh, Name: "Body", Local: rig.IdentityTransform(), Mesh: &rig.Mesh{Name: "Body"}})

	err := normalize.Apply(scene, opts, logging.NewNop())
	if err == nil {
		t.Fatal("expected error for scene without skeleton")
	}
	if !errors.Is(err, pipeline.ErrMissingSkeleton) {
		t.Fatalf("expected ErrMissingSkeleton, got %v", err)
	}
	if pipeline.Skippable(err) {
		t.Fatal("missing skeleton must be job-fatal, not skippable")
	}
}
