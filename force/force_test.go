package force

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
)

func newDynamicBody() *body.RigidBody {
	return body.NewRigidBody(body.NewBodyHandle(), spatial.NewTransform(), shape.NewSphere(1), body.Dynamic, 1.0)
}

func TestGravityScalesByMass(t *testing.T) {
	rb := newDynamicBody()
	g := NewGravity(mgl64.Vec3{0, -10, 0})

	g.Apply(rb)
	rb.IntegrateVelocity(1.0)

	if math.Abs(rb.Velocity.Y()+10) > 1e-9 {
		t.Fatalf("expected a mass-scaled gravity force to give -10 m/s after 1s, got %v", rb.Velocity)
	}
}

func TestGravitySkipsNonDynamicBodies(t *testing.T) {
	rb := body.NewRigidBody(body.NewBodyHandle(), spatial.NewTransform(), shape.NewSphere(1), body.Static, 1.0)
	g := NewGravity(mgl64.Vec3{0, -10, 0})

	g.Apply(rb)
	// Static bodies never integrate, but Apply itself must be a no-op rather
	// than panicking on an infinite-mass multiply.
}

func TestManagerAppliesBoundForcesAndClearsAccumulatorsFirst(t *testing.T) {
	rb := newDynamicBody()
	mgr := NewManager()
	mgr.Add(rb, NewGravity(mgl64.Vec3{0, -10, 0}))

	mgr.ApplyForces()
	mgr.ApplyForces() // the second call must clear the first call's force before re-applying
	rb.IntegrateVelocity(1.0)

	if math.Abs(rb.Velocity.Y()+10) > 1e-9 {
		t.Fatalf("expected the manager to have applied gravity exactly once, got %v", rb.Velocity)
	}
}

func TestManagerApplyForcesSkipsSleepingBodies(t *testing.T) {
	rb := newDynamicBody()
	rb.Sleep()

	mgr := NewManager()
	mgr.Add(rb, NewGravity(mgl64.Vec3{0, -10, 0}))
	mgr.ApplyForces()
	rb.Awake()
	rb.IntegrateVelocity(1.0)

	if rb.Velocity != (mgl64.Vec3{}) {
		t.Fatal("expected a sleeping body to never accumulate force")
	}
}

func TestManagerRemoveBodyDropsItsBindings(t *testing.T) {
	rb := newDynamicBody()
	mgr := NewManager()
	g := NewGravity(mgl64.Vec3{0, -10, 0})
	mgr.Add(rb, g)

	mgr.RemoveBody(rb)
	mgr.ApplyForces()
	rb.IntegrateVelocity(1.0)

	if rb.Velocity != (mgl64.Vec3{}) {
		t.Fatal("expected removing the body's binding to stop gravity from applying")
	}
}

func TestManagerRemoveDropsSpecificBinding(t *testing.T) {
	rb := newDynamicBody()
	mgr := NewManager()
	g := NewGravity(mgl64.Vec3{0, -10, 0})
	mgr.Add(rb, g)
	mgr.Remove(rb, g)

	mgr.ApplyForces()
	rb.IntegrateVelocity(1.0)

	if rb.Velocity != (mgl64.Vec3{}) {
		t.Fatal("expected removing the (body, force) pair to stop gravity from applying")
	}
}
