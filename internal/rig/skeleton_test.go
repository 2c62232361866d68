package rig_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"rigprep/internal/rig"
)

const tol = 1e-5

func translate(x, y, z float64) rig.Transform {
	t := rig.IdentityTransform()
	t.Translation = mgl64.Vec3{x, y, z}
	return t
}

func TestAddBoneRejectsDuplicatesAndBadParents(t *testing.T) {
	sk := rig.NewSkeleton("Armature")
	hips, err := sk.AddBone("Hips", rig.NoBone, rig.IdentityTransform())
	if err != nil {
		t.Fatalf("AddBone failed: %v", err)
	}

	if _, err := sk.AddBone("Hips", rig.NoBone, rig.IdentityTransform()); err == nil {
		t.Fatal("expected duplicate name to be rejected")
	}
	if _, err := sk.AddBone("Spine", rig.BoneID(42), rig.IdentityTransform()); err == nil {
		t.Fatal("expected unknown parent to be rejected")
	}
	if _, err := sk.AddBone("Spine", hips, rig.IdentityTransform()); err != nil {
		t.Fatalf("AddBone with valid parent failed: %v", err)
	}
}

func TestRenameKeepsLookupConsistent(t *testing.T) {
	sk := rig.NewSkeleton("Armature")
	id, _ := sk.AddBone("mixamorig:Hips", rig.NoBone, rig.IdentityTransform())

	if err := sk.Rename(id, "mixamorig:Hips_01"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if _, ok := sk.Lookup("mixamorig:Hips"); ok {
		t.Fatal("old name should no longer resolve")
	}
	got, ok := sk.Lookup("mixamorig:Hips_01")
	if !ok || got != id {
		t.Fatalf("new name resolves to %v (ok=%v), want %v", got, ok, id)
	}
	if sk.Bone(id).Name != "mixamorig:Hips_01" {
		t.Fatalf("bone label not updated: %q", sk.Bone(id).Name)
	}

	other, _ := sk.AddBone("Spine", id, rig.IdentityTransform())
	if err := sk.Rename(other, "mixamorig:Hips_01"); err == nil {
		t.Fatal("expected rename collision to be rejected")
	}
}

func TestWorldComposesThroughParents(t *testing.T) {
	sk := rig.NewSkeleton("Armature")
	hips, _ := sk.AddBone("Hips", rig.NoBone, translate(0, 1, 0))
	spine, _ := sk.AddBone("Spine", hips, translate(0, 0.5, 0))

	world := sk.World(spine)
	want := mgl64.Translate3D(0, 1.5, 0)
	if !rig.MatApproxEqual(world, want, tol) {
		t.Fatalf("unexpected world transform:\n%v\nwant\n%v", world, want)
	}
}

func TestReparentPreserveWorld(t *testing.T) {
	sk := rig.NewSkeleton("Armature")
	wrapper, _ := sk.AddBone("_rootJoint", rig.NoBone, translate(1, 2, 3))
	child := addRotatedBone(t, sk, "Hips", wrapper)

	before := sk.World(child)
	if err := sk.ReparentPreserveWorld(child, rig.NoBone); err != nil {
		t.Fatalf("ReparentPreserveWorld failed: %v", err)
	}
	after := sk.World(child)

	if sk.Bone(child).Parent != rig.NoBone {
		t.Fatal("child should now be a top-level bone")
	}
	if !rig.MatApproxEqual(before, after, tol) {
		t.Fatalf("world pose changed:\nbefore %v\nafter  %v", before, after)
	}
}

func TestReparentRejectsCycles(t *testing.T) {
	sk := rig.NewSkeleton("Armature")
	a, _ := sk.AddBone("a", rig.NoBone, rig.IdentityTransform())
	b, _ := sk.AddBone("b", a, rig.IdentityTransform())

	if err := sk.ReparentPreserveWorld(a, b); err == nil {
		t.Fatal("expected cycle to be rejected")
	}
}

func TestRemoveRequiresLeaf(t *testing.T) {
	sk := rig.NewSkeleton("Armature")
	a, _ := sk.AddBone("a", rig.NoBone, rig.IdentityTransform())
	b, _ := sk.AddBone("b", a, rig.IdentityTransform())

	if err := sk.Remove(a); err == nil {
		t.Fatal("expected removal of non-leaf to fail")
	}
	if err := sk.Remove(b); err != nil {
		t.Fatalf("Remove leaf failed: %v", err)
	}
	if sk.Bone(b) != nil {
		t.Fatal("removed bone should be gone")
	}
	if _, ok := sk.Lookup("b"); ok {
		t.Fatal("removed bone name should not resolve")
	}
	if sk.BoneCount() != 1 {
		t.Fatalf("unexpected bone count: %d", sk.BoneCount())
	}
	// IDs stay stable after removal.
	if sk.Bone(a).ID != a {
		t.Fatal("surviving bone ID changed")
	}
}

func addRotatedBone(t *testing.T, sk *rig.Skeleton, name string, parent rig.BoneID) rig.BoneID {
	t.Helper()
	local := rig.Transform{
		Translation: mgl64.Vec3{0, 0.9, 0.1},
		Rotation:    mgl64.QuatRotate(0.5, mgl64.Vec3{0, 0, 1}),
		Scale:       mgl64.Vec3{1, 1, 1},
	}
	id, err := sk.AddBone(name, parent, local)
	if err != nil {
		t.Fatalf("AddBone(%s) failed: %v", name, err)
	}
	return id
}
