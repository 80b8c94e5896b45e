package physics

import (
	"errors"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
	"github.com/ignis-engine/physics/constraint"
	"github.com/ignis-engine/physics/force"
	"github.com/ignis-engine/physics/gjk"
	"github.com/ignis-engine/physics/manifold"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
)

// defaultCellSize and defaultNumCells seed the broad-phase grid, grounded on
// the teacher's own production World construction (a 6-unit cell over a
// 4096-cell grid), sized for a scene with dozens to low hundreds of bodies.
const (
	defaultCellSize = 6.0
	defaultNumCells = 4096
)

var errNilCollider = errors.New("collider must not be nil")
var errNonNormalizableOrientation = errors.New("body orientation is no longer normalisable")

// BodyProps is the construction-time description of a RigidBody handed to
// AddBody: the collider it is born with, its BodyType, the density used to
// derive mass/inertia for a Dynamic body with a Convex collider (ignored
// otherwise), and whether it only reports Trigger events.
type BodyProps struct {
	BodyType  body.BodyType
	Collider  shape.Collider
	Density   float64
	Material  body.Material
	IsTrigger bool
}

// InitialState is a RigidBody's starting pose and velocity.
type InitialState struct {
	Transform       spatial.Transform
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// Filter restricts which bodies RayCast/QueryAABB consider; a nil Filter
// accepts every body.
type Filter func(body.BodyHandle) bool

// RayHit is one RayCast result: the body struck, the world-space point and
// outward normal, and the distance along the ray.
type RayHit struct {
	Body     body.BodyHandle
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// World owns every body, user constraint, and the broad-phase/narrow-phase/
// solver state needed to advance them in time - the root type composing the
// layers spec.md S2 describes bottom-up: bounds, colliders, GJK/EPA,
// manifolds, dynamics+solver.
type World struct {
	Logger *slog.Logger

	config Config

	bodies    []*body.RigidBody
	bodyIndex map[body.BodyHandle]int

	colliderOwner map[body.ColliderHandle]body.BodyHandle

	constraints     []constraint.Constraint
	constraintIndex map[body.ConstraintHandle]constraint.Constraint

	forces  *force.Manager
	gravity *force.Gravity
	solver  *constraint.Manager
	grid    *spatialGrid

	manifolds map[pairKey]*manifoldEntry
	events    Events

	accumulator float64
	poisoned    bool
	poisonErr   error
}

// NewWorld validates cfg and constructs an empty World ready for AddBody. A
// nil logger defaults to slog.Default(), matching the pack's own texture of
// staying silent unless something is actually asked of it.
func NewWorld(cfg Config, logger *slog.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	solver := constraint.NewManager()
	solver.MaxIterations = cfg.MaxSolverIterations

	return &World{
		Logger:          logger,
		config:          cfg,
		bodyIndex:       make(map[body.BodyHandle]int),
		colliderOwner:   make(map[body.ColliderHandle]body.BodyHandle),
		constraintIndex: make(map[body.ConstraintHandle]constraint.Constraint),
		forces:          force.NewManager(),
		gravity:         force.NewGravity(cfg.Gravity),
		solver:          solver,
		grid:            newSpatialGrid(defaultCellSize, defaultNumCells),
		manifolds:       make(map[pairKey]*manifoldEntry),
		events:          NewEvents(),
	}, nil
}

// Subscribe registers a listener for a lifecycle event type (Trigger/
// Collision Enter/Stay/Exit, OnSleep, OnWake).
func (w *World) Subscribe(eventType EventType, listener EventListener) {
	w.events.Subscribe(eventType, listener)
}

// checkPoisoned is the entry guard every error-returning exported World
// method runs first, per spec.md S7: once an InvariantViolation has halted a
// step, each such call fails fast instead of touching a corrupted world.
// Subscribe, VisitManifolds, RayCast and QueryAABB do not run it.
func (w *World) checkPoisoned() error {
	if w.poisoned {
		return ErrWorldPoisoned
	}
	return nil
}

// poison marks the world unusable after an InvariantViolation and logs the
// cause; the caller's Step invocation still returns the error.
func (w *World) poison(err error) error {
	w.poisoned = true
	w.poisonErr = err
	w.Logger.Warn("physics world poisoned by invariant violation", slog.Any("err", err))
	return err
}

// AddBody constructs a RigidBody from props/state, registers it under a
// freshly minted BodyHandle, and returns that handle.
func (w *World) AddBody(props BodyProps, state InitialState) (body.BodyHandle, error) {
	if err := w.checkPoisoned(); err != nil {
		return body.BodyHandle{}, err
	}
	if props.Collider == nil {
		return body.BodyHandle{}, newError(InvalidArgument, "AddBody", errNilCollider)
	}

	handle := body.NewBodyHandle()
	rb := body.NewRigidBody(handle, state.Transform, props.Collider, props.BodyType, props.Density)
	applyMaterialCoefficients(rb, props.Material)
	rb.IsTrigger = props.IsTrigger
	rb.Velocity = state.Velocity
	rb.AngularVelocity = state.AngularVelocity

	w.bodyIndex[handle] = len(w.bodies)
	w.bodies = append(w.bodies, rb)

	if rb.BodyType == body.Dynamic {
		w.forces.Add(rb, w.gravity)
	}

	return handle, nil
}

// RemoveBody detaches the body's force bindings and every user constraint
// referencing it, purges its event/manifold bookkeeping, then removes it. A
// swap-remove keeps the body slice compact; bodyIndex is fixed up for
// whichever body moved into the vacated slot.
func (w *World) RemoveBody(handle body.BodyHandle) error {
	if err := w.checkPoisoned(); err != nil {
		return err
	}
	idx, ok := w.bodyIndex[handle]
	if !ok {
		return newError(InvalidArgument, "RemoveBody", ErrUnknownHandle)
	}

	rb := w.bodies[idx]
	w.forces.RemoveBody(rb)

	kept := w.constraints[:0]
	for _, c := range w.constraints {
		if touches(c, rb) {
			continue
		}
		kept = append(kept, c)
	}
	w.constraints = kept
	for constraintHandle, c := range w.constraintIndex {
		if touches(c, rb) {
			delete(w.constraintIndex, constraintHandle)
		}
	}

	for key, entry := range w.manifolds {
		if entry.bodyA == rb || entry.bodyB == rb {
			delete(w.manifolds, key)
		}
	}
	w.events.forgetBody(handle)

	last := len(w.bodies) - 1
	w.bodies[idx] = w.bodies[last]
	w.bodies = w.bodies[:last]
	delete(w.bodyIndex, handle)
	if idx != last {
		w.bodyIndex[w.bodies[idx].Handle] = idx
	}

	return nil
}

func touches(c constraint.Constraint, rb *body.RigidBody) bool {
	bodied, ok := c.(constraint.Bodied)
	if !ok {
		return false
	}
	a, b := bodied.Bodies()
	return a == rb || b == rb
}

// AttachCollider replaces the body's collider, re-deriving mass/inertia
// exactly as NewRigidBody would for a body constructed with it, and returns
// a handle identifying this attachment for later bookkeeping.
func (w *World) AttachCollider(bodyHandle body.BodyHandle, collider shape.Collider, density float64) (body.ColliderHandle, error) {
	if err := w.checkPoisoned(); err != nil {
		return body.ColliderHandle{}, err
	}
	if collider == nil {
		return body.ColliderHandle{}, newError(InvalidArgument, "AttachCollider", errNilCollider)
	}
	idx, ok := w.bodyIndex[bodyHandle]
	if !ok {
		return body.ColliderHandle{}, newError(InvalidArgument, "AttachCollider", ErrUnknownHandle)
	}

	rb := w.bodies[idx]
	rb.AttachCollider(collider, density)

	colliderHandle := body.NewColliderHandle()
	w.colliderOwner[colliderHandle] = bodyHandle
	return colliderHandle, nil
}

// AddForceBinding subscribes f to run on the body every step until removed.
func (w *World) AddForceBinding(handle body.BodyHandle, f force.Force) error {
	if err := w.checkPoisoned(); err != nil {
		return err
	}
	rb, err := w.resolveBody(handle, "AddForceBinding")
	if err != nil {
		return err
	}
	w.forces.Add(rb, f)
	return nil
}

// RemoveForceBinding unsubscribes f from the body, a no-op if it was not
// bound.
func (w *World) RemoveForceBinding(handle body.BodyHandle, f force.Force) error {
	if err := w.checkPoisoned(); err != nil {
		return err
	}
	rb, err := w.resolveBody(handle, "RemoveForceBinding")
	if err != nil {
		return err
	}
	w.forces.Remove(rb, f)
	return nil
}

// AddConstraint registers a user constraint (DistanceConstraint,
// HingeConstraint, ...) for every future step's solve and returns a handle
// identifying it for later removal.
func (w *World) AddConstraint(c constraint.Constraint) (body.ConstraintHandle, error) {
	if err := w.checkPoisoned(); err != nil {
		return body.ConstraintHandle{}, err
	}
	handle := body.NewConstraintHandle()
	w.constraints = append(w.constraints, c)
	w.constraintIndex[handle] = c
	return handle, nil
}

// RemoveConstraint drops a previously registered user constraint.
func (w *World) RemoveConstraint(handle body.ConstraintHandle) error {
	if err := w.checkPoisoned(); err != nil {
		return err
	}
	c, ok := w.constraintIndex[handle]
	if !ok {
		return newError(InvalidArgument, "RemoveConstraint", ErrUnknownHandle)
	}
	delete(w.constraintIndex, handle)
	for i, existing := range w.constraints {
		if existing == c {
			w.constraints = append(w.constraints[:i], w.constraints[i+1:]...)
			break
		}
	}
	return nil
}

// applyMaterialCoefficients copies the caller-facing coefficients of src
// (restitution, friction, damping) onto rb's Material field by field,
// leaving Density and mass exactly as NewRigidBody already derived them from
// rb's own collider - body.Material.mass is unexported precisely so a
// caller-supplied Material can never accidentally zero it out wholesale.
func applyMaterialCoefficients(rb *body.RigidBody, src body.Material) {
	rb.Material.Restitution = src.Restitution
	rb.Material.StaticFriction = src.StaticFriction
	rb.Material.DynamicFriction = src.DynamicFriction
	rb.Material.LinearDamping = src.LinearDamping
	rb.Material.AngularDamping = src.AngularDamping
}

func (w *World) resolveBody(handle body.BodyHandle, op string) (*body.RigidBody, error) {
	idx, ok := w.bodyIndex[handle]
	if !ok {
		return nil, newError(InvalidArgument, op, ErrUnknownHandle)
	}
	return w.bodies[idx], nil
}

// VisitManifolds calls fn once per pair currently in contact, the "iterate
// the frame's active manifolds with their contacts" operation of spec.md
// S6. Only pairs that ended the most recent step Intersecting are visited.
func (w *World) VisitManifolds(fn func(bodyA, bodyB body.BodyHandle, m *manifold.Manifold)) {
	for _, entry := range w.manifolds {
		if entry.manifold.State == manifold.Intersecting {
			fn(entry.bodyA.Handle, entry.bodyB.Handle, entry.manifold)
		}
	}
}

// Step advances the world by dt, sub-stepping internally at the configured
// FixedDt up to MaxSubSteps per call - spec.md S6's "one simulation tick
// (may sub-step internally)". A remainder shorter than FixedDt carries over
// in the accumulator rather than being dropped.
func (w *World) Step(dt float64) error {
	if err := w.checkPoisoned(); err != nil {
		return err
	}

	w.accumulator += dt
	steps := 0
	for w.accumulator >= w.config.FixedDt && steps < w.config.MaxSubSteps {
		if err := w.tick(w.config.FixedDt); err != nil {
			return w.poison(err)
		}
		w.accumulator -= w.config.FixedDt
		steps++
	}
	return nil
}

// tick runs exactly the nine-stage ordering of spec.md S4.7 once:
// applyForces, integrateVelocities, broadphase+narrowphase+manifold refresh,
// assembleConstraints, PGS solve, integratePositions, recomputeDerived
// (folded into IntegratePosition's own collider/orientation refresh),
// updateMotionAndSleep, clearAccumulators (deferred to the next tick's
// ApplyForces, per force.Manager's own doc comment).
func (w *World) tick(dt float64) error {
	w.forces.ApplyForces()

	task(w.config.Workers, len(w.bodies), func(start, end int) {
		for _, rb := range w.bodies[start:end] {
			rb.IntegrateVelocity(dt)
		}
	})

	pairs := w.grid.findPairs(w.bodies)
	entries := w.narrowPhase(pairs)

	w.solver.Reset()
	for _, entry := range entries {
		w.events.recordContact(entry.bodyA, entry.bodyB)
		if entry.bodyA.IsTrigger || entry.bodyB.IsTrigger {
			continue
		}
		if entry.bodyA.IsSleeping && entry.bodyB.IsSleeping {
			continue
		}
		w.solver.Add(constraint.NewContactConstraintWithConfig(entry.bodyA, entry.bodyB, entry.manifold,
			w.config.Baumgarte, w.config.PenetrationSlop, w.config.RestitutionSlop))
	}
	for _, c := range w.constraints {
		if bodied, ok := c.(constraint.Bodied); ok {
			a, b := bodied.Bodies()
			if a.IsSleeping && b.IsSleeping {
				continue
			}
		}
		w.solver.Add(c)
	}

	w.solver.Solve(dt)

	task(w.config.Workers, len(w.bodies), func(start, end int) {
		for _, rb := range w.bodies[start:end] {
			rb.IntegratePosition(dt)
		}
	})

	for _, rb := range w.bodies {
		if !orientationValid(rb.Transform.Rotation) {
			return newError(InvariantViolation, "tick", errNonNormalizableOrientation)
		}
	}

	contactPairs := make([]BodyPair, len(entries))
	for i, entry := range entries {
		contactPairs[i] = BodyPair{BodyA: entry.bodyA, BodyB: entry.bodyB}
	}
	w.updateMotionAndSleep(dt, contactPairs)
	w.events.processSleepEvents(w.bodies)
	w.events.flush()

	return nil
}

// orientationValid reports whether q's components are all finite and it has
// non-degenerate magnitude - the check that must hold after every
// integration sub-step (spec.md S7's InvariantViolation case).
func orientationValid(q mgl64.Quat) bool {
	if math.IsNaN(q.W) || math.IsInf(q.W, 0) {
		return false
	}
	for _, c := range q.V {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	lenSqr := q.W*q.W + q.V.LenSqr()
	return lenSqr > 1e-12
}

// RayCast walks origin+lambda*dir up to maxDistance against every body
// passing filter, via the support-mapping conservative-advancement walk
// (convex colliders) or per-sub-part walk (concave colliders), and returns
// the closest hit.
func (w *World) RayCast(origin, dir mgl64.Vec3, maxDistance float64, filter Filter) (RayHit, bool) {
	bestLambda := maxDistance
	var best RayHit
	found := false

	for _, rb := range w.bodies {
		if filter != nil && !filter(rb.Handle) {
			continue
		}
		if ok, enter := rb.Collider.AABB().RayIntersect(origin, dir, w.config.ContactPrecision); !ok || enter > bestLambda {
			continue
		}

		if lambda, point, normal, ok := w.rayCastBody(rb, origin, dir, bestLambda); ok {
			bestLambda = lambda
			best = RayHit{Body: rb.Handle, Point: point, Normal: normal, Distance: lambda}
			found = true
		}
	}

	return best, found
}

// rayCastBody dispatches a single body's ray test on its collider Kind: a
// direct gjk.Raycast against a convex collider (RigidBody already
// implements gjk.ConvexSupporter), or the closest hit among the convex
// sub-parts a concave collider's ray query yields.
func (w *World) rayCastBody(rb *body.RigidBody, origin, dir mgl64.Vec3, maxLambda float64) (lambda float64, point, normal mgl64.Vec3, ok bool) {
	if rb.Collider.Kind() == shape.KindConvex {
		hit, l, p, n := gjk.Raycast(rb, origin, dir, maxLambda, w.config.GJKEpsilon)
		return l, p, n, hit
	}

	concave := rb.Collider.(shape.Concave)
	bestLambda := maxLambda
	found := false
	concave.ProcessIntersectingParts(origin, dir, w.config.ContactPrecision, func(part shape.Convex, partTransform spatial.Transform) {
		supporter := convexPart{Shape: part, Transform: partTransform}
		hit, l, p, n := gjk.Raycast(supporter, origin, dir, bestLambda, w.config.GJKEpsilon)
		if hit && l <= bestLambda {
			bestLambda, point, normal, found = l, p, n, true
		}
	})
	return bestLambda, point, normal, found
}

// QueryAABB returns the handle of every body (passing filter) whose
// collider AABB overlaps aabb.
func (w *World) QueryAABB(aabb spatial.AABB, filter Filter) []body.BodyHandle {
	var result []body.BodyHandle
	for _, rb := range w.bodies {
		if filter != nil && !filter(rb.Handle) {
			continue
		}
		if aabb.Overlaps(rb.Collider.AABB(), 0) {
			result = append(result, rb.Handle)
		}
	}
	return result
}
