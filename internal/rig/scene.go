package rig

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ObjectKind classifies scene objects.
type ObjectKind string

const (
	KindSkeleton ObjectKind = "skeleton"
	KindMesh     ObjectKind = "mesh"
	KindOther    ObjectKind = "other"
)

// Object is one node of the scene graph. Exactly one of Skeleton/Mesh is set
// depending on Kind; KindOther objects (cameras, lights, empties, container
// nodes) carry neither and are discarded during normalization.
type Object struct {
	Kind   ObjectKind
	Name   string
	Local  Transform
	Parent *Object

	Skeleton *Skeleton
	Mesh     *Mesh
}

// World returns the object's world transform, composed through its parents.
func (o *Object) World() mgl64.Mat4 {
	if o == nil {
		return mgl64.Ident4()
	}
	local := o.Local.Mat4()
	if o.Parent == nil {
		return local
	}
	return o.Parent.World().Mul4(local)
}

// Scene is the explicit per-job workspace. It is built fresh for every job;
// nothing in this package keeps state between scenes.
type Scene struct {
	Objects []*Object
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Add appends an object and returns it.
func (s *Scene) Add(o *Object) *Object {
	s.Objects = append(s.Objects, o)
	return o
}

// SkeletonObject returns the first skeleton object in the scene.
func (s *Scene) SkeletonObject() (*Object, bool) {
	for _, o := range s.Objects {
		if o.Kind == KindSkeleton && o.Skeleton != nil {
			return o, true
		}
	}
	return nil, false
}

// MeshObjects returns the mesh objects in scene order.
func (s *Scene) MeshObjects() []*Object {
	var out []*Object
	for _, o := range s.Objects {
		if o.Kind == KindMesh && o.Mesh != nil {
			out = append(out, o)
		}
	}
	return out
}

// Remove unlinks an object from the scene. Children of the removed object are
// reparented to its parent with their world transform preserved.
func (s *Scene) Remove(target *Object) {
	for _, o := range s.Objects {
		if o.Parent == target {
			world := o.World()
			o.Parent = target.Parent
			o.Local = TransformFromMat4(parentWorldInv(o.Parent).Mul4(world))
		}
	}
	kept := s.Objects[:0]
	for _, o := range s.Objects {
		if o != target {
			kept = append(kept, o)
		}
	}
	s.Objects = kept
}

// Detach clears an object's parent, re-applying its world transform so the
// world pose is unchanged.
func (s *Scene) Detach(o *Object) {
	if o == nil || o.Parent == nil {
		return
	}
	world := o.World()
	o.Parent = nil
	o.Local = TransformFromMat4(world)
}

// RenameBone renames a bone in the given skeleton and rewrites the mirrored
// group labels of every mesh binding that references it, so name-based
// references never go stale.
func (s *Scene) RenameBone(skeleton *Skeleton, id BoneID, newName string) error {
	if skeleton == nil {
		return fmt.Errorf("skeleton must not be nil")
	}
	if err := skeleton.Rename(id, newName); err != nil {
		return err
	}
	for _, meshObj := range s.MeshObjects() {
		binding := &meshObj.Mesh.Binding
		if binding.Skeleton != skeleton {
			continue
		}
		if group := binding.Group(id); group != nil {
			group.Name = newName
		}
	}
	return nil
}

// DropBoneBindings removes every mesh vertex group bound to the given bone
// and rewrites the four-influence joint slots to the surviving group order.
// Influences that pointed at the dropped group lose their weight. Call this
// before removing a bone from the skeleton so no binding references a dead ID.
func (s *Scene) DropBoneBindings(skeleton *Skeleton, id BoneID) {
	for _, meshObj := range s.MeshObjects() {
		mesh := meshObj.Mesh
		binding := &mesh.Binding
		if binding.Skeleton != skeleton {
			continue
		}

		remap := make([]int, len(binding.Groups))
		kept := binding.Groups[:0]
		dropped := false
		for i := range binding.Groups {
			if binding.Groups[i].Bone == id {
				remap[i] = -1
				dropped = true
				continue
			}
			remap[i] = len(kept)
			kept = append(kept, binding.Groups[i])
		}
		if !dropped {
			continue
		}
		binding.Groups = kept

		for v := range mesh.Joints {
			for slot := 0; slot < 4; slot++ {
				old := int(mesh.Joints[v][slot])
				if old >= len(remap) || remap[old] < 0 {
					mesh.Joints[v][slot] = 0
					if v < len(mesh.Weights) {
						mesh.Weights[v][slot] = 0
					}
					continue
				}
				mesh.Joints[v][slot] = uint16(remap[old])
			}
		}
	}
}

func parentWorldInv(parent *Object) mgl64.Mat4 {
	if parent == nil {
		return mgl64.Ident4()
	}
	return parent.World().Inv()
}
