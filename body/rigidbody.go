package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
)

// BodyType distinguishes how a RigidBody responds to forces and the solver.
type BodyType int

const (
	// Dynamic bodies are affected by forces, gravity, and collisions; they
	// have finite mass and move freely.
	Dynamic BodyType = iota
	// Static bodies are immovable and have infinite mass; they never
	// integrate and never accept impulses.
	Static
	// Kinematic bodies also have infinite mass and never accept impulses,
	// but their velocity (set directly by the caller, never by a Force)
	// still integrates into position - the usual "moving platform" shape.
	Kinematic
)

// RigidBody is the simulation entity: spatial state, mass properties, force
// accumulators, and the attached collider.
type RigidBody struct {
	Handle BodyHandle

	PreviousTransform spatial.Transform
	Transform         spatial.Transform

	PresolveVelocity mgl64.Vec3
	Velocity         mgl64.Vec3

	PresolveAngularVelocity mgl64.Vec3
	AngularVelocity         mgl64.Vec3

	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsSleeping bool
	SleepTimer float64
	// Motion is a low-pass filter of |v|^2 + |w|^2, the signal the sleep
	// heuristic dwells on rather than reacting to a single slow frame.
	Motion float64

	// Integrated and ConstraintsSolved are per-step bookkeeping flags an
	// owning World can use to detect bodies that fell through a step
	// without being touched (e.g. a removed collider); they carry no
	// solver meaning by themselves.
	Integrated        bool
	ConstraintsSolved bool

	// IsTrigger bodies generate Trigger* events instead of Collision*
	// events and are excluded from the solved contact set.
	IsTrigger bool

	Material Material
	BodyType BodyType
	Collider shape.Collider
}

// NewRigidBody creates a body with the given collider, type and density.
// density is used to derive mass/inertia for Dynamic bodies from a Convex
// collider; it is ignored for Static/Kinematic bodies and for bodies
// carrying a Concave collider (ground geometry is always infinite-mass).
func NewRigidBody(handle BodyHandle, transform spatial.Transform, collider shape.Collider, bodyType BodyType, density float64) *RigidBody {
	rb := &RigidBody{
		Handle:            handle,
		PreviousTransform: transform,
		Transform:         transform,
		BodyType:          bodyType,
	}
	rb.AttachCollider(collider, density)
	return rb
}

// AttachCollider swaps rb's collider in place and re-derives mass/inertia
// for it exactly as NewRigidBody would, preserving rb's identity so force
// bindings and constraints that already reference this pointer stay valid
// across a mid-life collider replacement.
func (rb *RigidBody) AttachCollider(collider shape.Collider, density float64) {
	rb.Collider = collider

	convex, isConvex := collider.(shape.Convex)

	if rb.BodyType != Dynamic || !isConvex {
		rb.Material.Density = 0
		rb.Material.mass = math.Inf(1)
		rb.InertiaLocal = mgl64.Mat3{}
		rb.InverseInertiaLocal = mgl64.Mat3{}
	} else {
		mass := convex.ComputeMass(density)
		rb.Material.Density = density
		rb.Material.mass = mass
		rb.InertiaLocal = convex.ComputeInertia(mass)
		rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
	}

	rb.Collider.SetWorldTransform(rb.Transform)
}

// IsStatic reports whether the body never integrates or accepts impulses.
func (rb *RigidBody) IsStatic() bool { return rb.BodyType == Static }

// IsMovable reports whether the body integrates position (Dynamic or
// Kinematic); only Static bodies are excluded.
func (rb *RigidBody) IsMovable() bool { return rb.BodyType != Static }

// TrySleep advances the dwell timer when the smoothed Motion signal stays
// below velocityThreshold and puts the body to sleep once it has stayed
// there for timeThreshold seconds; any rise above threshold wakes it. bias
// weights the low-pass filter between the running Motion average and this
// step's instantaneous |v|^2+|w|^2 (Config.SleepMotionBias).
func (rb *RigidBody) TrySleep(dt, timeThreshold, velocityThreshold, bias float64) {
	instant := rb.Velocity.LenSqr() + rb.AngularVelocity.LenSqr()
	rb.Motion = bias*rb.Motion + (1-bias)*instant

	if rb.Motion < velocityThreshold*velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timeThreshold {
			rb.Sleep()
		}
	} else {
		rb.Awake()
	}
}

// Sleep freezes the body: velocities are zeroed, forces cleared, and
// integration/solving skip it until Awake is called.
func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0
	rb.Motion = 0

	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

// Awake clears the sleeping flag and resets the dwell timer. Waking also
// propagates transitively through the contact graph; see World.propagateSleep.
func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0
}

// IntegrateVelocity performs the semi-implicit Euler velocity update only
// (spec step "integrateVelocities"): accumulated force/torque - already
// including gravity, applied upstream by force.Manager - divided by mass,
// then linear/angular damping. Position is untouched; narrow-phase runs
// against the pre-step transform before IntegratePosition is called with
// the solved velocity.
func (rb *RigidBody) IntegrateVelocity(dt float64) {
	if rb.BodyType == Static || rb.IsSleeping {
		return
	}

	if rb.BodyType == Dynamic {
		invMass := 1.0 / rb.Material.GetMass()
		rb.Velocity = rb.Velocity.Add(rb.accumulatedForce.Mul(invMass * dt))
		rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))

		invInertia := rb.GetInverseInertiaWorld()
		angularAccel := invInertia.Mul3x1(rb.accumulatedTorque)
		rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
		rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))
	}

	rb.PresolveVelocity = rb.Velocity
	rb.PresolveAngularVelocity = rb.AngularVelocity
}

// IntegratePosition performs the position half of semi-implicit Euler
// (spec step "integratePositions"), run after the PGS solve has settled
// Velocity/AngularVelocity: x += v*dt, q normalized(q + 0.5*dt*(0,w)*q).
// Refreshes the attached collider's world transform and normalises
// orientation, the invariant required at the end of every integration
// sub-step.
func (rb *RigidBody) IntegratePosition(dt float64) {
	if rb.BodyType == Static || rb.IsSleeping {
		return
	}

	rb.PreviousTransform.Position = rb.Transform.Position
	rb.PreviousTransform.Rotation = rb.Transform.Rotation

	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.SetRotation(rb.Transform.Rotation.Add(qDot.Scale(dt)))

	rb.Collider.SetWorldTransform(rb.Transform)
	rb.Integrated = true
}

// AddForce accumulates a world-space force to be applied on the next
// Integrate. Continuous force emitters (gravity) skip sleeping bodies
// themselves - see force.Manager.ApplyForces - so this does not wake the
// body; a one-off impulse-style force should call Awake explicitly.
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == Dynamic {
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// AddTorque accumulates a world-space torque.
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == Dynamic {
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

// ClearForces zeroes the force/torque accumulators. Called by the force
// application stage at the start of the next tick, not by Integrate, so a
// force bound via a Force still observes the frame it was applied in.
func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{}
	rb.accumulatedTorque = mgl64.Vec3{}
}

// Center returns the body's world position, used by gjk.GJK to pick a
// cheap initial search direction.
func (rb *RigidBody) Center() mgl64.Vec3 { return rb.Transform.Position }

// SupportWorld returns the support point of the body's attached Convex
// collider, in world space, for direction (also in world space). Panics if
// Collider is not Convex - callers resolve concave bodies into their convex
// sub-parts before reaching this.
func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	convex := rb.Collider.(shape.Convex)
	localDirection := rb.Transform.WorldToLocalDirection(direction)
	localSupport := convex.Support(localDirection)
	return rb.Transform.LocalToWorldPoint(localSupport)
}

// GetInertiaWorld returns R * I_local * R^T.
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	r := rb.Transform.Rotation.Mat4().Mat3()
	return r.Mul3(rb.InertiaLocal).Mul3(r.Transpose())
}

// GetInverseInertiaWorld returns R * I_local^-1 * R^T, or the zero matrix
// for Static/Kinematic bodies (infinite-mass bodies accept no torque).
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType != Dynamic {
		return mgl64.Mat3{}
	}
	r := rb.Transform.Rotation.Mat4().Mat3()
	return r.Mul3(rb.InverseInertiaLocal).Mul3(r.Transpose())
}

// InvMass returns 1/mass, or 0 for infinite-mass bodies.
func (rb *RigidBody) InvMass() float64 {
	if rb.BodyType != Dynamic {
		return 0
	}
	return 1.0 / rb.Material.GetMass()
}
