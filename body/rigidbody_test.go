package body

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
)

func newBody(bodyType BodyType, collider shape.Collider, density float64) *RigidBody {
	return NewRigidBody(NewBodyHandle(), spatial.NewTransform(), collider, bodyType, density)
}

func TestNewRigidBodyDynamicDerivesFiniteMass(t *testing.T) {
	rb := newBody(Dynamic, shape.NewSphere(1), 2.0)

	if math.IsInf(rb.Material.GetMass(), 1) {
		t.Fatal("expected a finite mass for a dynamic sphere")
	}
	if rb.Material.GetMass() <= 0 {
		t.Fatalf("expected positive mass, got %v", rb.Material.GetMass())
	}
}

func TestNewRigidBodyStaticHasInfiniteMass(t *testing.T) {
	rb := newBody(Static, shape.NewBox(mgl64.Vec3{1, 1, 1}), 1.0)

	if !math.IsInf(rb.Material.GetMass(), 1) {
		t.Fatalf("expected infinite mass for a static body, got %v", rb.Material.GetMass())
	}
	if rb.InvMass() != 0 {
		t.Fatalf("expected zero inverse mass for a static body, got %v", rb.InvMass())
	}
}

func TestAttachColliderPreservesIdentityAndRederivesMass(t *testing.T) {
	rb := newBody(Dynamic, shape.NewSphere(1), 1.0)
	before := rb.Material.GetMass()

	rb.AttachCollider(shape.NewSphere(2), 1.0)

	if rb.Material.GetMass() == before {
		t.Fatal("expected mass to change after attaching a larger collider")
	}
}

func TestIntegrateVelocityAppliesForceAndDamping(t *testing.T) {
	rb := newBody(Dynamic, shape.NewSphere(1), 1.0)
	rb.Material.LinearDamping = 0

	rb.AddForce(mgl64.Vec3{0, -10, 0})
	rb.IntegrateVelocity(1.0)

	if rb.Velocity.Y() >= 0 {
		t.Fatalf("expected downward velocity after applying a downward force, got %v", rb.Velocity)
	}
}

func TestIntegrateVelocitySkipsStaticAndSleepingBodies(t *testing.T) {
	static := newBody(Static, shape.NewSphere(1), 1.0)
	static.AddForce(mgl64.Vec3{0, -10, 0})
	static.IntegrateVelocity(1.0)
	if static.Velocity != (mgl64.Vec3{}) {
		t.Fatal("expected a static body to never accumulate velocity")
	}

	sleeping := newBody(Dynamic, shape.NewSphere(1), 1.0)
	sleeping.Sleep()
	sleeping.AddForce(mgl64.Vec3{0, -10, 0})
	sleeping.IntegrateVelocity(1.0)
	if sleeping.Velocity != (mgl64.Vec3{}) {
		t.Fatal("expected a sleeping body to ignore forces during integration")
	}
}

func TestIntegratePositionMovesByVelocityAndUpdatesCollider(t *testing.T) {
	rb := newBody(Dynamic, shape.NewSphere(1), 1.0)
	rb.Velocity = mgl64.Vec3{1, 0, 0}

	rb.IntegratePosition(1.0)

	if rb.Transform.Position.X() != 1 {
		t.Fatalf("expected position.x == 1 after one second at v=1, got %v", rb.Transform.Position)
	}
	if !rb.Integrated {
		t.Fatal("expected Integrated flag to be set")
	}
}

func TestTrySleepPutsSlowBodyToSleepAfterThreshold(t *testing.T) {
	rb := newBody(Dynamic, shape.NewSphere(1), 1.0)
	rb.Velocity = mgl64.Vec3{0.001, 0, 0}

	for i := 0; i < 20; i++ {
		rb.TrySleep(0.1, 0.5, 0.05, 0.9)
	}

	if !rb.IsSleeping {
		t.Fatal("expected a near-motionless body to fall asleep after sustained low motion")
	}
}

func TestTrySleepWakesOnHighMotion(t *testing.T) {
	rb := newBody(Dynamic, shape.NewSphere(1), 1.0)
	rb.IsSleeping = true
	rb.Velocity = mgl64.Vec3{10, 0, 0}

	rb.TrySleep(0.1, 0.5, 0.05, 0.9)

	if rb.IsSleeping {
		t.Fatal("expected a fast-moving body to wake immediately")
	}
}

func TestAddForceIgnoredForNonDynamicBodies(t *testing.T) {
	rb := newBody(Kinematic, shape.NewSphere(1), 1.0)
	rb.AddForce(mgl64.Vec3{1, 1, 1})
	rb.IntegrateVelocity(1.0)

	// Kinematic bodies never accept forces; their velocity is caller-set.
	if rb.Velocity != (mgl64.Vec3{}) {
		t.Fatalf("expected kinematic body velocity to stay caller-controlled, got %v", rb.Velocity)
	}
}
