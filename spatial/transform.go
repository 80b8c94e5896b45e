package spatial

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid transform: position plus orientation. InverseRotation
// is carried alongside Rotation (rather than recomputed on every use) since
// every collider support query needs it to bring a world-space direction
// into local space.
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// SetRotation assigns a normalised orientation and keeps InverseRotation in
// sync; every mutation of Rotation must go through this to preserve the
// invariant that InverseRotation == Rotation.Inverse().
func (t *Transform) SetRotation(q mgl64.Quat) {
	t.Rotation = q.Normalize()
	t.InverseRotation = t.Rotation.Inverse()
}

// WorldToLocalDirection rotates a world-space direction into this
// transform's local space.
func (t Transform) WorldToLocalDirection(dir mgl64.Vec3) mgl64.Vec3 {
	return t.InverseRotation.Rotate(dir)
}

// LocalToWorldPoint rotates and translates a local-space point into world
// space.
func (t Transform) LocalToWorldPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(p))
}
