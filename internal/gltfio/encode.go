package gltfio

import (
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"rigprep/internal/fileutil"
	"rigprep/internal/logging"
	"rigprep/internal/pipeline"
	"rigprep/internal/rig"
)

// Exporter encodes scenes to GLB.
type Exporter struct {
	generator string
	logger    *slog.Logger
}

// NewExporter returns a GLB exporter stamping the given generator label into
// the asset header.
func NewExporter(generator string, logger *slog.Logger) *Exporter {
	return &Exporter{generator: generator, logger: logging.NewComponentLogger(logger, "export")}
}

// SaveScene encodes the scene to a GLB file. The skeleton becomes the joint
// hierarchy, meshes become skinned primitives, and every track becomes a
// glTF animation, in track order. Root transforms are rotated back to Y-up.
//
// The file is written to a partial path and renamed into place once complete,
// so the output path never holds a truncated GLB. All failures wrap
// ErrExport.
func (e *Exporter) SaveScene(scene *rig.Scene, path string) error {
	skelObj, ok := scene.SkeletonObject()
	if !ok {
		return pipeline.Wrap(pipeline.ErrExport, "export", "", "scene has no skeleton", nil)
	}

	enc := &encoder{doc: gltf.NewDocument(), scene: scene, skelObj: skelObj}
	enc.doc.Asset.Generator = e.generator
	if err := enc.run(); err != nil {
		return pipeline.Wrap(pipeline.ErrExport, "export", "encode", path, err)
	}

	partial := fileutil.PartialPath(path)
	if err := gltf.SaveBinary(enc.doc, partial); err != nil {
		_ = os.Remove(partial)
		return pipeline.Wrap(pipeline.ErrExport, "export", "write", partial, err)
	}
	if err := fileutil.Publish(partial, path); err != nil {
		return pipeline.Wrap(pipeline.ErrExport, "export", "publish", path, err)
	}

	e.logger.Info("exported glb",
		logging.String("path", path),
		logging.Int("bones", skelObj.Skeleton.BoneCount()),
		logging.Int("meshes", len(scene.MeshObjects())),
		logging.Int("animations", len(skelObj.Skeleton.Animation.Tracks)),
	)
	return nil
}

type encoder struct {
	doc     *gltf.Document
	scene   *rig.Scene
	skelObj *rig.Object

	armatureIdx int
	nodeOfBone  map[rig.BoneID]int
}

func (e *encoder) run() error {
	e.buildJointNodes()
	e.buildMeshNodes()
	e.buildAnimations()
	return nil
}

// buildJointNodes emits one node per bone plus the armature root node holding
// them, with the root rotated into Y-up.
func (e *encoder) buildJointNodes() {
	sk := e.skelObj.Skeleton
	e.nodeOfBone = make(map[rig.BoneID]int)

	for _, bone := range sk.Bones() {
		node := &gltf.Node{Name: bone.Name}
		applyNodeTransform(node, bone.Bind)
		e.nodeOfBone[bone.ID] = e.addNode(node)
	}
	for _, bone := range sk.Bones() {
		if bone.Parent == rig.NoBone {
			continue
		}
		parent := e.doc.Nodes[e.nodeOfBone[bone.Parent]]
		parent.Children = append(parent.Children, e.nodeOfBone[bone.ID])
	}

	armature := &gltf.Node{Name: e.skelObj.Name}
	applyNodeTransform(armature, rig.TransformFromMat4(zUpToYUp.Mul4(e.skelObj.World())))
	for _, root := range sk.Roots() {
		armature.Children = append(armature.Children, e.nodeOfBone[root])
	}
	e.armatureIdx = e.addNode(armature)
	e.doc.Scenes[0].Nodes = append(e.doc.Scenes[0].Nodes, e.armatureIdx)
}

func (e *encoder) buildMeshNodes() {
	armature := e.doc.Nodes[e.armatureIdx]
	armatureWorld := zUpToYUp.Mul4(e.skelObj.World())

	for _, meshObj := range e.scene.MeshObjects() {
		mesh := meshObj.Mesh
		prim := &gltf.Primitive{Attributes: gltf.PrimitiveAttributes{}}

		prim.Attributes[gltf.POSITION] = modeler.WritePosition(e.doc, mesh.Positions)
		if len(mesh.Normals) > 0 {
			prim.Attributes[gltf.NORMAL] = modeler.WriteNormal(e.doc, mesh.Normals)
		}
		if len(mesh.TexCoords) > 0 {
			prim.Attributes[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(e.doc, mesh.TexCoords)
		}
		if len(mesh.Joints) > 0 {
			prim.Attributes[gltf.JOINTS_0] = modeler.WriteJoints(e.doc, mesh.Joints)
		}
		if len(mesh.Weights) > 0 {
			prim.Attributes[gltf.WEIGHTS_0] = modeler.WriteWeights(e.doc, mesh.Weights)
		}
		if len(mesh.Indices) > 0 {
			prim.Indices = gltf.Index(modeler.WriteIndices(e.doc, mesh.Indices))
		}

		e.doc.Meshes = append(e.doc.Meshes, &gltf.Mesh{
			Name:       mesh.Name,
			Primitives: []*gltf.Primitive{prim},
		})
		meshIdx := len(e.doc.Meshes) - 1

		node := &gltf.Node{Name: meshObj.Name, Mesh: gltf.Index(meshIdx)}
		applyNodeTransform(node, meshObj.Local)
		nodeIdx := e.addNode(node)
		armature.Children = append(armature.Children, nodeIdx)

		if len(mesh.Binding.Groups) > 0 && mesh.Binding.Skeleton == e.skelObj.Skeleton {
			meshWorld := armatureWorld.Mul4(meshObj.Local.Mat4())
			node.Skin = gltf.Index(e.buildSkin(mesh, armatureWorld, meshWorld))
		}
	}
}

// buildSkin emits the skin for one mesh, with joints in group order and the
// inverse bind matrices derived from the rest pose.
func (e *encoder) buildSkin(mesh *rig.Mesh, armatureWorld, meshWorld mgl64.Mat4) int {
	sk := mesh.Binding.Skeleton
	skin := &gltf.Skin{Name: mesh.Name}
	ibms := make([][4][4]float32, 0, len(mesh.Binding.Groups))

	for _, group := range mesh.Binding.Groups {
		skin.Joints = append(skin.Joints, e.nodeOfBone[group.Bone])
		jointWorld := armatureWorld.Mul4(sk.World(group.Bone))
		ibms = append(ibms, mat4To4x4(jointWorld.Inv().Mul4(meshWorld)))
	}

	skin.InverseBindMatrices = gltf.Index(modeler.WriteAccessor(e.doc, gltf.TargetNone, ibms))
	e.doc.Skins = append(e.doc.Skins, skin)
	return len(e.doc.Skins) - 1
}

func (e *encoder) buildAnimations() {
	sk := e.skelObj.Skeleton
	for _, track := range sk.Animation.Tracks {
		anim := &gltf.Animation{Name: track.Name}
		for _, curve := range track.Clip.Curves {
			boneID, ok := sk.Lookup(curve.Bone)
			if !ok || len(curve.Keys) == 0 {
				continue
			}
			e.addChannel(anim, e.nodeOfBone[boneID], curve)
		}
		if len(anim.Channels) > 0 {
			e.doc.Animations = append(e.doc.Animations, anim)
		}
	}
}

func (e *encoder) addChannel(anim *gltf.Animation, nodeIdx int, curve rig.BoneCurve) {
	trs, ok := trsFromCurvePath(curve.Path)
	if !ok {
		return
	}

	times := make([]float32, len(curve.Keys))
	for i, key := range curve.Keys {
		times[i] = float32(key.Frame / frameRate)
	}
	inputIdx := modeler.WriteAccessor(e.doc, gltf.TargetNone, times)
	input := e.doc.Accessors[inputIdx]
	input.Min = []float64{float64(times[0])}
	input.Max = []float64{float64(times[len(times)-1])}

	var outputIdx int
	if curve.Path == rig.PathRotation {
		values := make([][4]float32, len(curve.Keys))
		for i, key := range curve.Keys {
			values[i] = [4]float32{
				float32(key.Value[0]), float32(key.Value[1]),
				float32(key.Value[2]), float32(key.Value[3]),
			}
		}
		outputIdx = modeler.WriteAccessor(e.doc, gltf.TargetNone, values)
	} else {
		values := make([][3]float32, len(curve.Keys))
		for i, key := range curve.Keys {
			values[i] = [3]float32{
				float32(key.Value[0]), float32(key.Value[1]), float32(key.Value[2]),
			}
		}
		outputIdx = modeler.WriteAccessor(e.doc, gltf.TargetNone, values)
	}

	samplerIdx := len(anim.Samplers)
	anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
		Input:         inputIdx,
		Output:        outputIdx,
		Interpolation: gltf.InterpolationLinear,
	})
	anim.Channels = append(anim.Channels, &gltf.AnimationChannel{
		Sampler: samplerIdx,
		Target: gltf.AnimationChannelTarget{
			Node: gltf.Index(nodeIdx),
			Path: trs,
		},
	})
}

func (e *encoder) addNode(n *gltf.Node) int {
	e.doc.Nodes = append(e.doc.Nodes, n)
	return len(e.doc.Nodes) - 1
}

func mat4To4x4(m mgl64.Mat4) [4][4]float32 {
	var out [4][4]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col][row] = float32(m[col*4+row])
		}
	}
	return out
}
