// Package normalize restructures an imported skeleton into the canonical
// shape the target runtime requires: a single root object at the canonical
// name, no synthetic wrapper joints, no external parent, and nothing in the
// scene but the skeleton and its meshes. World poses of everything retained
// are numerically unchanged.
package normalize

import (
	"log/slog"

	"rigprep/internal/logging"
	"rigprep/internal/pipeline"
	"rigprep/internal/rig"
)

// Options selects the canonical names the normalizer enforces.
type Options struct {
	// RootName is the canonical name for the skeleton root object and its data.
	RootName string
	// WrapperJoint is the synthetic joint name some interchange exporters
	// inject above the hip chain. It is not an anatomical bone.
	WrapperJoint string
}

// Apply normalizes the scene in place. It fails with ErrMissingSkeleton when
// the scene carries no skeleton; every other step degrades to a no-op when
// its precondition is absent.
func Apply(scene *rig.Scene, opts Options, logger *slog.Logger) error {
	log := logging.NewComponentLogger(logger, "normalize")

	skelObj, ok := scene.SkeletonObject()
	if !ok {
		return pipeline.Wrap(pipeline.ErrMissingSkeleton, "normalize", "", "no skeleton in imported scene", nil)
	}
	skeleton := skelObj.Skeleton

	if skelObj.Name != opts.RootName {
		log.Debug("renaming skeleton root", logging.String("from", skelObj.Name), logging.String("to", opts.RootName))
		skelObj.Name = opts.RootName
	}
	skeleton.Name = opts.RootName

	if err := removeWrapperJoint(scene, skeleton, opts.WrapperJoint, log); err != nil {
		return err
	}

	if skelObj.Parent != nil {
		log.Debug("detaching skeleton from external parent", logging.String("parent", skelObj.Parent.Name))
		scene.Detach(skelObj)
	}

	pruneScene(scene, skelObj, log)
	return nil
}

// removeWrapperJoint reparents the synthetic joint's direct children to the
// top level with their world poses preserved, then deletes the joint and the
// vertex groups bound to it. Interchange exporters list the wrapper in
// skin.joints, so skinned meshes carry a group for it even though it holds no
// meaningful weights. A skeleton without the wrapper is already canonical.
func removeWrapperJoint(scene *rig.Scene, skeleton *rig.Skeleton, wrapperName string, log *slog.Logger) error {
	wrapperID, ok := skeleton.Lookup(wrapperName)
	if !ok {
		return nil
	}

	children := skeleton.Children(wrapperID)
	for _, child := range children {
		if err := skeleton.ReparentPreserveWorld(child, rig.NoBone); err != nil {
			return pipeline.Wrap(pipeline.ErrMissingSkeleton, "normalize", "reparent",
				skeleton.Bone(child).Name, err)
		}
		log.Debug("reparented wrapper child to root", logging.String("bone", skeleton.Bone(child).Name))
	}
	scene.DropBoneBindings(skeleton, wrapperID)
	if err := skeleton.Remove(wrapperID); err != nil {
		return pipeline.Wrap(pipeline.ErrMissingSkeleton, "normalize", "remove wrapper joint", wrapperName, err)
	}
	log.Info("removed synthetic wrapper joint",
		logging.String("joint", wrapperName),
		logging.Int("reparented_children", len(children)),
	)
	return nil
}

// pruneScene discards every object that is neither the skeleton root nor a
// mesh, and parents the surviving meshes to the skeleton object so the output
// contains exactly one hierarchy.
func pruneScene(scene *rig.Scene, skelObj *rig.Object, log *slog.Logger) {
	var doomed []*rig.Object
	for _, o := range scene.Objects {
		if o == skelObj || (o.Kind == rig.KindMesh && o.Mesh != nil) {
			continue
		}
		doomed = append(doomed, o)
	}
	for _, o := range doomed {
		scene.Remove(o)
	}

	for _, meshObj := range scene.MeshObjects() {
		if meshObj.Parent == skelObj {
			continue
		}
		world := meshObj.World()
		meshObj.Parent = skelObj
		meshObj.Local = rig.TransformFromMat4(skelObj.World().Inv().Mul4(world))
	}

	if len(doomed) > 0 {
		log.Debug("pruned non-rig objects", logging.Int("count", len(doomed)))
	}
}
