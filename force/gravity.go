package force

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
)

// Gravity applies a constant acceleration, scaled by mass so every dynamic
// body falls at the same rate regardless of how heavy it is.
type Gravity struct {
	Acceleration mgl64.Vec3
}

func NewGravity(acceleration mgl64.Vec3) *Gravity {
	return &Gravity{Acceleration: acceleration}
}

func (g *Gravity) Apply(rb *body.RigidBody) {
	if rb.BodyType != body.Dynamic {
		return
	}
	rb.AddForce(g.Acceleration.Mul(rb.Material.GetMass()))
}
