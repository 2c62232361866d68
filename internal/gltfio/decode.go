package gltfio

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"rigprep/internal/logging"
	"rigprep/internal/rig"
)

// Loader decodes GLB files into scenes.
type Loader struct {
	logger *slog.Logger
}

// NewLoader returns a GLB loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logging.NewComponentLogger(logger, "gltf")}
}

// LoadScene reads a GLB file and rebuilds it as a scene graph: skin joints
// become skeleton bones, mesh nodes become mesh objects bound to the
// skeleton, remaining nodes become plain objects, and animations become
// tracks on the skeleton. Root objects are rotated from Y-up to Z-up.
func (l *Loader) LoadScene(path string) (*rig.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open glb %s: %w", path, err)
	}

	d := &decoder{doc: doc, logger: l.logger}
	scene, err := d.run()
	if err != nil {
		return nil, fmt.Errorf("decode glb %s: %w", path, err)
	}

	l.logger.Debug("decoded glb",
		logging.String(logging.FieldSource, path),
		logging.Int("nodes", len(doc.Nodes)),
		logging.Int("animations", len(doc.Animations)),
	)
	return scene, nil
}

type decoder struct {
	doc    *gltf.Document
	logger *slog.Logger

	parents    map[int]int
	jointNodes map[int]bool
	boneByNode map[int]rig.BoneID

	scene        *rig.Scene
	skeleton     *rig.Skeleton
	skeletonObj  *rig.Object
	armatureNode int
	objByNode    map[int]*rig.Object
}

func (d *decoder) run() (*rig.Scene, error) {
	d.scene = rig.NewScene()
	d.parents = make(map[int]int)
	d.objByNode = make(map[int]*rig.Object)
	d.armatureNode = -1
	for i, n := range d.doc.Nodes {
		for _, c := range n.Children {
			d.parents[c] = i
		}
	}

	d.collectJoints()
	if err := d.buildSkeleton(); err != nil {
		return nil, err
	}
	if err := d.buildObjects(); err != nil {
		return nil, err
	}
	if err := d.buildAnimations(); err != nil {
		return nil, err
	}
	d.toZUp()
	return d.scene, nil
}

// collectJoints marks the node indices that belong to the skeleton. Skinned
// files declare them in the skin; motion-only files without a skin are
// recovered from the animation channel targets and their subtrees.
func (d *decoder) collectJoints() {
	d.jointNodes = make(map[int]bool)
	if len(d.doc.Skins) > 0 {
		for _, j := range d.doc.Skins[0].Joints {
			d.jointNodes[j] = true
		}
		return
	}

	targeted := make(map[int]bool)
	for _, anim := range d.doc.Animations {
		for _, ch := range anim.Channels {
			if ch.Target.Node != nil {
				targeted[*ch.Target.Node] = true
			}
		}
	}
	if len(targeted) == 0 {
		return
	}
	// Topmost targeted nodes plus everything below them form the bone tree.
	for idx := range targeted {
		top := idx
		for cur, ok := d.parents[top]; ok && targeted[cur]; cur, ok = d.parents[cur] {
			top = cur
		}
		d.markSubtree(top)
	}
}

func (d *decoder) markSubtree(idx int) {
	if d.jointNodes[idx] {
		return
	}
	d.jointNodes[idx] = true
	for _, c := range d.doc.Nodes[idx].Children {
		d.markSubtree(c)
	}
}

func (d *decoder) buildSkeleton() error {
	if len(d.jointNodes) == 0 {
		return nil
	}

	var roots []int
	for idx := range d.jointNodes {
		if parent, ok := d.parents[idx]; !ok || !d.jointNodes[parent] {
			roots = append(roots, idx)
		}
	}
	sort.Ints(roots)

	name := "Armature"
	if parent, ok := d.parents[roots[0]]; ok {
		d.armatureNode = parent
		if n := d.doc.Nodes[parent].Name; n != "" {
			name = n
		}
	} else if len(d.doc.Skins) > 0 && d.doc.Skins[0].Name != "" {
		name = d.doc.Skins[0].Name
	}

	d.skeleton = rig.NewSkeleton(name)
	d.boneByNode = make(map[int]rig.BoneID, len(d.jointNodes))
	for _, idx := range roots {
		if err := d.addBoneSubtree(idx, rig.NoBone); err != nil {
			return err
		}
	}

	local := rig.IdentityTransform()
	if d.armatureNode >= 0 {
		local = nodeTransform(d.doc.Nodes[d.armatureNode])
	}
	d.skeletonObj = d.scene.Add(&rig.Object{
		Kind:     rig.KindSkeleton,
		Name:     name,
		Local:    local,
		Skeleton: d.skeleton,
	})
	if d.armatureNode >= 0 {
		d.objByNode[d.armatureNode] = d.skeletonObj
	}
	return nil
}

func (d *decoder) addBoneSubtree(idx int, parent rig.BoneID) error {
	node := d.doc.Nodes[idx]
	boneName := node.Name
	if boneName == "" {
		boneName = fmt.Sprintf("bone_%d", idx)
	}
	id, err := d.skeleton.AddBone(boneName, parent, nodeTransform(node))
	if err != nil {
		return fmt.Errorf("add bone %q: %w", boneName, err)
	}
	d.boneByNode[idx] = id
	for _, c := range node.Children {
		if d.jointNodes[c] {
			if err := d.addBoneSubtree(c, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *decoder) buildObjects() error {
	for idx, node := range d.doc.Nodes {
		if d.jointNodes[idx] || idx == d.armatureNode {
			continue
		}
		if node.Mesh != nil {
			mesh, err := d.decodeMesh(idx, node)
			if err != nil {
				return err
			}
			d.objByNode[idx] = d.scene.Add(&rig.Object{
				Kind:  rig.KindMesh,
				Name:  nodeName(node, idx),
				Local: nodeTransform(node),
				Mesh:  mesh,
			})
			continue
		}
		d.objByNode[idx] = d.scene.Add(&rig.Object{
			Kind:  rig.KindOther,
			Name:  nodeName(node, idx),
			Local: nodeTransform(node),
		})
	}

	// Parent objects through the nearest ancestor that is itself an object.
	for idx, obj := range d.objByNode {
		for cur, ok := d.parents[idx]; ok; cur, ok = d.parents[cur] {
			if parentObj, found := d.objByNode[cur]; found {
				obj.Parent = parentObj
				break
			}
		}
	}
	return nil
}

func (d *decoder) decodeMesh(idx int, node *gltf.Node) (*rig.Mesh, error) {
	src := d.doc.Meshes[*node.Mesh]
	mesh := &rig.Mesh{Name: nodeName(node, idx)}

	for _, prim := range src.Primitives {
		base := uint32(mesh.VertexCount())

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(d.doc, d.doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q positions: %w", mesh.Name, err)
		}
		mesh.Positions = append(mesh.Positions, positions...)

		if accIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err := modeler.ReadNormal(d.doc, d.doc.Accessors[accIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q normals: %w", mesh.Name, err)
			}
			mesh.Normals = append(mesh.Normals, normals...)
		}
		if accIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err := modeler.ReadTextureCoord(d.doc, d.doc.Accessors[accIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q texcoords: %w", mesh.Name, err)
			}
			mesh.TexCoords = append(mesh.TexCoords, uvs...)
		}
		if accIdx, ok := prim.Attributes[gltf.JOINTS_0]; ok {
			joints, err := modeler.ReadJoints(d.doc, d.doc.Accessors[accIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q joints: %w", mesh.Name, err)
			}
			mesh.Joints = append(mesh.Joints, joints...)
		}
		if accIdx, ok := prim.Attributes[gltf.WEIGHTS_0]; ok {
			weights, err := modeler.ReadWeights(d.doc, d.doc.Accessors[accIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q weights: %w", mesh.Name, err)
			}
			mesh.Weights = append(mesh.Weights, weights...)
		}
		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(d.doc, d.doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q indices: %w", mesh.Name, err)
			}
			for _, i := range indices {
				mesh.Indices = append(mesh.Indices, base+i)
			}
		}
	}

	if node.Skin != nil && d.skeleton != nil {
		d.bindSkin(mesh, d.doc.Skins[*node.Skin])
	}
	return mesh, nil
}

// bindSkin rebuilds per-bone vertex groups from the four-influence joint and
// weight attributes. Group order follows the skin's joint order so joint slot
// values keep indexing correctly.
func (d *decoder) bindSkin(mesh *rig.Mesh, skin *gltf.Skin) {
	binding := rig.SkinBinding{Skeleton: d.skeleton}
	for _, nodeIdx := range skin.Joints {
		id, ok := d.boneByNode[nodeIdx]
		if !ok {
			id = rig.NoBone
		}
		group := rig.VertexGroup{Bone: id}
		if bone := d.skeleton.Bone(id); bone != nil {
			group.Name = bone.Name
		}
		binding.Groups = append(binding.Groups, group)
	}

	for v := range mesh.Joints {
		for slot := 0; slot < 4; slot++ {
			w := mesh.Weights[v][slot]
			if w <= 0 {
				continue
			}
			j := int(mesh.Joints[v][slot])
			if j >= len(binding.Groups) {
				continue
			}
			binding.Groups[j].Weights = append(binding.Groups[j].Weights, rig.VertexWeight{
				Vertex: v,
				Weight: float64(w),
			})
		}
	}
	mesh.Binding = binding
}

func (d *decoder) buildAnimations() error {
	if d.skeleton == nil || len(d.doc.Animations) == 0 {
		return nil
	}

	for i, anim := range d.doc.Animations {
		clip, err := d.decodeClip(i, anim)
		if err != nil {
			return err
		}
		if len(clip.Curves) == 0 {
			continue
		}
		d.skeleton.Animation.Tracks = append(d.skeleton.Animation.Tracks, rig.Track{
			Name:  clip.Name,
			Start: clip.FrameStart,
			Clip:  clip,
		})
		if d.skeleton.Animation.Active == nil {
			d.skeleton.Animation.Active = clip
		}
	}
	return nil
}

func (d *decoder) decodeClip(idx int, anim *gltf.Animation) (*rig.AnimationClip, error) {
	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("clip_%d", idx)
	}
	clip := &rig.AnimationClip{Name: name}

	for _, ch := range anim.Channels {
		if ch.Target.Node == nil || ch.Sampler >= len(anim.Samplers) {
			continue
		}
		boneID, ok := d.boneByNode[*ch.Target.Node]
		if !ok {
			continue
		}
		path, ok := curvePathFromTRS(ch.Target.Path)
		if !ok {
			continue
		}

		sampler := anim.Samplers[ch.Sampler]
		curve, err := d.decodeCurve(d.skeleton.Bone(boneID).Name, path, sampler)
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", name, err)
		}
		clip.Curves = append(clip.Curves, curve)
	}

	clip.RecomputeFrameRange()
	return clip, nil
}

func (d *decoder) decodeCurve(bone string, path rig.CurvePath, sampler *gltf.AnimationSampler) (rig.BoneCurve, error) {
	curve := rig.BoneCurve{Bone: bone, Path: path}

	raw, err := modeler.ReadAccessor(d.doc, d.doc.Accessors[sampler.Input], nil)
	if err != nil {
		return curve, fmt.Errorf("sampler input: %w", err)
	}
	times, ok := raw.([]float32)
	if !ok {
		return curve, fmt.Errorf("sampler input: unexpected accessor type %T", raw)
	}

	raw, err = modeler.ReadAccessor(d.doc, d.doc.Accessors[sampler.Output], nil)
	if err != nil {
		return curve, fmt.Errorf("sampler output: %w", err)
	}

	switch values := raw.(type) {
	case [][3]float32:
		for i, t := range times {
			if i >= len(values) {
				break
			}
			v := values[i]
			curve.Keys = append(curve.Keys, rig.Keyframe{
				Frame: float64(t) * frameRate,
				Value: []float64{float64(v[0]), float64(v[1]), float64(v[2])},
			})
		}
	case [][4]float32:
		for i, t := range times {
			if i >= len(values) {
				break
			}
			v := values[i]
			curve.Keys = append(curve.Keys, rig.Keyframe{
				Frame: float64(t) * frameRate,
				Value: []float64{float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])},
			})
		}
	default:
		return curve, fmt.Errorf("sampler output: unexpected accessor type %T", raw)
	}
	return curve, nil
}

// toZUp rotates root objects into the in-memory Z-up convention.
func (d *decoder) toZUp() {
	for _, obj := range d.scene.Objects {
		if obj.Parent == nil {
			obj.Local = rig.TransformFromMat4(yUpToZUp.Mul4(obj.Local.Mat4()))
		}
	}
}

func nodeName(n *gltf.Node, idx int) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node_%d", idx)
}
