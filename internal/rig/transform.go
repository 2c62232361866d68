package rig

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

// Transform is a local translation/rotation/scale triple.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// IdentityTransform returns the neutral transform.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Mat4 composes the transform as translation * rotation * scale.
func (t Transform) Mat4() mgl64.Mat4 {
	translate := mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	rotate := t.Rotation.Normalize().Mat4()
	scale := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}

// TransformFromMat4 decomposes an affine matrix into translation, rotation,
// and scale. Shear and mirroring are not representable and are assumed absent;
// interchange rigs do not carry them.
func TransformFromMat4(m mgl64.Mat4) Transform {
	translation := m.Col(3).Vec3()

	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()
	scale := mgl64.Vec3{c0.Len(), c1.Len(), c2.Len()}

	rot := mgl64.Ident4()
	if scale.X() != 0 {
		c0 = c0.Mul(1 / scale.X())
	}
	if scale.Y() != 0 {
		c1 = c1.Mul(1 / scale.Y())
	}
	if scale.Z() != 0 {
		c2 = c2.Mul(1 / scale.Z())
	}
	rot.SetCol(0, c0.Vec4(0))
	rot.SetCol(1, c1.Vec4(0))
	rot.SetCol(2, c2.Vec4(0))

	return Transform{
		Translation: translation,
		Rotation:    mgl64.Mat4ToQuat(rot).Normalize(),
		Scale:       scale,
	}
}

// ApproxEqual reports whether two transforms match within tol per component.
// Rotations are compared up to quaternion sign.
func (t Transform) ApproxEqual(o Transform, tol float64) bool {
	for i := 0; i < 3; i++ {
		if !scalar.EqualWithinAbs(t.Translation[i], o.Translation[i], tol) {
			return false
		}
		if !scalar.EqualWithinAbs(t.Scale[i], o.Scale[i], tol) {
			return false
		}
	}
	dot := t.Rotation.Normalize().Dot(o.Rotation.Normalize())
	if dot < 0 {
		dot = -dot
	}
	return scalar.EqualWithinAbs(dot, 1, tol)
}

// MatApproxEqual reports whether two matrices match element-wise within tol.
func MatApproxEqual(a, b mgl64.Mat4, tol float64) bool {
	for i := 0; i < 16; i++ {
		if !scalar.EqualWithinAbs(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
