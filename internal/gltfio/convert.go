package gltfio

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"rigprep/internal/rig"
)

// frameRate maps clip frames to glTF sampler seconds. Motion sources in this
// pipeline are authored at 30 fps.
const frameRate = 30.0

var (
	yUpToZUp = mgl64.HomogRotate3DX(math.Pi / 2)
	zUpToYUp = mgl64.HomogRotate3DX(-math.Pi / 2)

	identityMatrix = [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
)

// nodeTransform reads a node's local transform, preferring the decomposed TRS
// fields and falling back to the matrix form. Zero-valued rotation and scale
// are treated as the glTF defaults.
func nodeTransform(n *gltf.Node) rig.Transform {
	if n.Matrix != identityMatrix && n.Matrix != ([16]float64{}) {
		return rig.TransformFromMat4(mgl64.Mat4(n.Matrix))
	}

	t := rig.IdentityTransform()
	t.Translation = mgl64.Vec3{n.Translation[0], n.Translation[1], n.Translation[2]}

	rot := n.Rotation
	if rot == ([4]float64{}) {
		rot = [4]float64{0, 0, 0, 1}
	}
	t.Rotation = mgl64.Quat{W: rot[3], V: mgl64.Vec3{rot[0], rot[1], rot[2]}}

	scale := n.Scale
	if scale == ([3]float64{}) {
		scale = [3]float64{1, 1, 1}
	}
	t.Scale = mgl64.Vec3{scale[0], scale[1], scale[2]}
	return t
}

// applyNodeTransform writes a transform into a node's TRS fields.
func applyNodeTransform(n *gltf.Node, t rig.Transform) {
	n.Translation = [3]float64{t.Translation.X(), t.Translation.Y(), t.Translation.Z()}
	n.Rotation = [4]float64{t.Rotation.V.X(), t.Rotation.V.Y(), t.Rotation.V.Z(), t.Rotation.W}
	n.Scale = [3]float64{t.Scale.X(), t.Scale.Y(), t.Scale.Z()}
}

func curvePathFromTRS(p gltf.TRSProperty) (rig.CurvePath, bool) {
	switch p {
	case gltf.TRSTranslation:
		return rig.PathTranslation, true
	case gltf.TRSRotation:
		return rig.PathRotation, true
	case gltf.TRSScale:
		return rig.PathScale, true
	default:
		return "", false
	}
}

func trsFromCurvePath(p rig.CurvePath) (gltf.TRSProperty, bool) {
	switch p {
	case rig.PathTranslation:
		return gltf.TRSTranslation, true
	case rig.PathRotation:
		return gltf.TRSRotation, true
	case rig.PathScale:
		return gltf.TRSScale, true
	default:
		return 0, false
	}
}
