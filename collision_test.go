package physics

import (
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
	"github.com/ignis-engine/physics/constraint"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(DefaultConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return w
}

func atRest(pos mgl64.Vec3) spatial.Transform {
	tr := spatial.NewTransform()
	tr.Position = pos
	return tr
}

func TestWorldFreeFallUnderGravity(t *testing.T) {
	w := newTestWorld(t)

	handle, err := w.AddBody(BodyProps{
		BodyType: body.Dynamic,
		Collider: shape.NewSphere(0.5),
		Density:  1.0,
	}, InitialState{Transform: atRest(mgl64.Vec3{0, 10, 0})})
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		require.NoError(t, w.Step(1.0/60.0))
	}

	idx := w.bodyIndex[handle]
	rb := w.bodies[idx]

	require.Less(t, rb.Transform.Position.Y(), 10.0, "body should have fallen under gravity")
	require.Less(t, rb.Velocity.Y(), 0.0, "falling body should have downward velocity")
}

func TestWorldStaticBodyNeverMoves(t *testing.T) {
	w := newTestWorld(t)

	handle, err := w.AddBody(BodyProps{
		BodyType: body.Static,
		Collider: shape.NewBox(mgl64.Vec3{10, 0.5, 10}),
	}, InitialState{Transform: atRest(mgl64.Vec3{0, 0, 0})})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, w.Step(1.0/60.0))
	}

	idx := w.bodyIndex[handle]
	rb := w.bodies[idx]
	require.Equal(t, mgl64.Vec3{0, 0, 0}, rb.Transform.Position)
}

func TestWorldSphereRestsOnGround(t *testing.T) {
	w := newTestWorld(t)

	_, err := w.AddBody(BodyProps{
		BodyType: body.Static,
		Collider: shape.NewBox(mgl64.Vec3{10, 0.5, 10}),
	}, InitialState{Transform: atRest(mgl64.Vec3{0, -0.5, 0})})
	require.NoError(t, err)

	sphereHandle, err := w.AddBody(BodyProps{
		BodyType: body.Dynamic,
		Collider: shape.NewSphere(0.5),
		Density:  1.0,
	}, InitialState{Transform: atRest(mgl64.Vec3{0, 0.52, 0})})
	require.NoError(t, err)

	for i := 0; i < 180; i++ {
		require.NoError(t, w.Step(1.0/60.0))
	}

	idx := w.bodyIndex[sphereHandle]
	rb := w.bodies[idx]

	// The sphere should have settled near y=0.5 (its radius above the
	// ground's top face at y=0) rather than falling through or bouncing
	// away indefinitely.
	require.InDelta(t, 0.5, rb.Transform.Position.Y(), 0.1)
}

func TestWorldDisjointBodiesNeverContact(t *testing.T) {
	w := newTestWorld(t)

	var contactSeen bool
	w.Subscribe(CollisionEnter, func(ev Event) { contactSeen = true })

	_, err := w.AddBody(BodyProps{
		BodyType: body.Dynamic,
		Collider: shape.NewSphere(0.5),
		Density:  1.0,
	}, InitialState{Transform: atRest(mgl64.Vec3{-100, 0, 0})})
	require.NoError(t, err)

	_, err = w.AddBody(BodyProps{
		BodyType: body.Dynamic,
		Collider: shape.NewSphere(0.5),
		Density:  1.0,
	}, InitialState{Transform: atRest(mgl64.Vec3{100, 0, 0})})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, w.Step(1.0/60.0))
	}

	require.False(t, contactSeen)
}

func TestWorldDistanceConstraintHoldsBodiesApart(t *testing.T) {
	w := newTestWorld(t)

	anchorHandle, err := w.AddBody(BodyProps{
		BodyType: body.Static,
		Collider: shape.NewSphere(0.1),
	}, InitialState{Transform: atRest(mgl64.Vec3{0, 5, 0})})
	require.NoError(t, err)

	hangingHandle, err := w.AddBody(BodyProps{
		BodyType: body.Dynamic,
		Collider: shape.NewSphere(0.2),
		Density:  1.0,
	}, InitialState{Transform: atRest(mgl64.Vec3{0, 3, 0})})
	require.NoError(t, err)

	anchor := w.bodies[w.bodyIndex[anchorHandle]]
	hanging := w.bodies[w.bodyIndex[hangingHandle]]

	_, err = w.AddConstraint(constraint.NewDistanceConstraint(anchor, hanging, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 0}, 2.0))
	require.NoError(t, err)

	for i := 0; i < 240; i++ {
		require.NoError(t, w.Step(1.0/60.0))
	}

	dist := hanging.Transform.Position.Sub(anchor.Transform.Position).Len()
	require.InDelta(t, 2.0, dist, 0.1)
}

func TestWorldRemoveBodyUnregistersOnlyThatBody(t *testing.T) {
	w := newTestWorld(t)

	aHandle, err := w.AddBody(BodyProps{
		BodyType: body.Dynamic,
		Collider: shape.NewSphere(0.5),
		Density:  1.0,
	}, InitialState{Transform: atRest(mgl64.Vec3{0, 0, 0})})
	require.NoError(t, err)

	bHandle, err := w.AddBody(BodyProps{
		BodyType: body.Dynamic,
		Collider: shape.NewSphere(0.5),
		Density:  1.0,
	}, InitialState{Transform: atRest(mgl64.Vec3{10, 0, 0})})
	require.NoError(t, err)

	require.NoError(t, w.RemoveBody(aHandle))
	require.NoError(t, w.Step(1.0/60.0))

	_, stillThere := w.bodyIndex[aHandle]
	require.False(t, stillThere)
	_, bStillThere := w.bodyIndex[bHandle]
	require.True(t, bStillThere)
}

func TestWorldRayCastHitsBox(t *testing.T) {
	w := newTestWorld(t)

	handle, err := w.AddBody(BodyProps{
		BodyType: body.Static,
		Collider: shape.NewBox(mgl64.Vec3{1, 1, 1}),
	}, InitialState{Transform: atRest(mgl64.Vec3{0, 0, 0})})
	require.NoError(t, err)

	hit, ok := w.RayCast(mgl64.Vec3{0, 0, -10}, mgl64.Vec3{0, 0, 1}, 100, nil)
	require.True(t, ok)
	require.Equal(t, handle, hit.Body)
	require.InDelta(t, 9.0, hit.Distance, 0.05)
}
