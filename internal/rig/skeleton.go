package rig

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// BoneID is the stable identity of a bone within its skeleton. IDs are dense
// indices assigned at load time and never reused, so renames cannot break
// references.
type BoneID int

// NoBone marks the absence of a parent; bones with parent NoBone sit at the
// top level of the tree.
const NoBone BoneID = -1

// Bone is a named node in a skeleton's rest-pose hierarchy.
type Bone struct {
	ID     BoneID
	Name   string
	Parent BoneID
	Bind   Transform
}

// Skeleton is the rooted tree of bones driving skinned meshes. The name index
// is maintained by AddBone and Rename; bone names are unique per skeleton.
type Skeleton struct {
	Name      string
	Animation AnimationContainer

	bones  []*Bone
	byName map[string]BoneID
}

// NewSkeleton returns an empty skeleton with the given data name.
func NewSkeleton(name string) *Skeleton {
	return &Skeleton{Name: name, byName: make(map[string]BoneID)}
}

// AddBone appends a bone and returns its ID. The parent must already exist
// (or be NoBone) and the name must be unused.
func (s *Skeleton) AddBone(name string, parent BoneID, bind Transform) (BoneID, error) {
	if name == "" {
		return NoBone, fmt.Errorf("bone name must not be empty")
	}
	if _, exists := s.byName[name]; exists {
		return NoBone, fmt.Errorf("duplicate bone name %q", name)
	}
	if parent != NoBone && s.Bone(parent) == nil {
		return NoBone, fmt.Errorf("parent bone %d does not exist", parent)
	}
	id := BoneID(len(s.bones))
	s.bones = append(s.bones, &Bone{ID: id, Name: name, Parent: parent, Bind: bind})
	s.byName[name] = id
	return id, nil
}

// Bone returns the bone with the given ID, or nil when the ID is out of range
// or the bone was removed.
func (s *Skeleton) Bone(id BoneID) *Bone {
	if id < 0 || int(id) >= len(s.bones) {
		return nil
	}
	return s.bones[id]
}

// Bones returns the live bones in ID order.
func (s *Skeleton) Bones() []*Bone {
	out := make([]*Bone, 0, len(s.bones))
	for _, b := range s.bones {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

// BoneCount returns the number of live bones.
func (s *Skeleton) BoneCount() int {
	return len(s.Bones())
}

// Lookup resolves a bone name to its ID.
func (s *Skeleton) Lookup(name string) (BoneID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// Rename relabels a bone, keeping the name index consistent. Renaming to the
// current name is a no-op.
func (s *Skeleton) Rename(id BoneID, newName string) error {
	bone := s.Bone(id)
	if bone == nil {
		return fmt.Errorf("bone %d does not exist", id)
	}
	if newName == "" {
		return fmt.Errorf("bone name must not be empty")
	}
	if bone.Name == newName {
		return nil
	}
	if existing, taken := s.byName[newName]; taken && existing != id {
		return fmt.Errorf("bone name %q already in use", newName)
	}
	delete(s.byName, bone.Name)
	bone.Name = newName
	s.byName[newName] = id
	return nil
}

// Children returns the direct children of a bone in ID order. Pass NoBone for
// the top-level bones.
func (s *Skeleton) Children(id BoneID) []BoneID {
	var out []BoneID
	for _, b := range s.bones {
		if b != nil && b.Parent == id {
			out = append(out, b.ID)
		}
	}
	return out
}

// Roots returns the top-level bones in ID order.
func (s *Skeleton) Roots() []BoneID {
	return s.Children(NoBone)
}

// World returns the bone's rest-pose world transform, composed root-down.
func (s *Skeleton) World(id BoneID) mgl64.Mat4 {
	bone := s.Bone(id)
	if bone == nil {
		return mgl64.Ident4()
	}
	local := bone.Bind.Mat4()
	if bone.Parent == NoBone {
		return local
	}
	return s.World(bone.Parent).Mul4(local)
}

// ReparentPreserveWorld moves a bone under a new parent, recomputing its local
// bind transform so the world-space rest pose is numerically unchanged.
func (s *Skeleton) ReparentPreserveWorld(id, newParent BoneID) error {
	bone := s.Bone(id)
	if bone == nil {
		return fmt.Errorf("bone %d does not exist", id)
	}
	if newParent != NoBone && s.Bone(newParent) == nil {
		return fmt.Errorf("parent bone %d does not exist", newParent)
	}
	for cursor := newParent; cursor != NoBone; cursor = s.bones[cursor].Parent {
		if cursor == id {
			return fmt.Errorf("reparenting bone %q under its own descendant", bone.Name)
		}
	}

	world := s.World(id)
	parentWorld := mgl64.Ident4()
	if newParent != NoBone {
		parentWorld = s.World(newParent)
	}
	bone.Bind = TransformFromMat4(parentWorld.Inv().Mul4(world))
	bone.Parent = newParent
	return nil
}

// Remove deletes a leaf bone. Callers must reparent children first; the
// removed ID is never reused.
func (s *Skeleton) Remove(id BoneID) error {
	bone := s.Bone(id)
	if bone == nil {
		return fmt.Errorf("bone %d does not exist", id)
	}
	if children := s.Children(id); len(children) > 0 {
		return fmt.Errorf("bone %q still has %d children", bone.Name, len(children))
	}
	delete(s.byName, bone.Name)
	s.bones[id] = nil
	return nil
}
