package physics

import (
	"testing"

	"github.com/ignis-engine/physics/body"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakePairKeyIsOrderIndependent(t *testing.T) {
	a, b := body.NewBodyHandle(), body.NewBodyHandle()
	assert.Equal(t, makePairKey(a, b), makePairKey(b, a))
}

func eventBody(t *testing.T) *body.RigidBody {
	t.Helper()
	return body.NewRigidBody(body.NewBodyHandle(), spatial.NewTransform(), shape.NewSphere(1), body.Dynamic, 1.0)
}

func TestEventsCollisionEnterStayExit(t *testing.T) {
	e := NewEvents()
	a, b := eventBody(t), eventBody(t)

	var seen []Event
	e.Subscribe(CollisionEnter, func(ev Event) { seen = append(seen, ev) })
	e.Subscribe(CollisionStay, func(ev Event) { seen = append(seen, ev) })
	e.Subscribe(CollisionExit, func(ev Event) { seen = append(seen, ev) })

	// Frame 1: pair first touches -> Enter.
	e.recordContact(a, b)
	e.flush()
	require.Len(t, seen, 1)
	_, isEnter := seen[0].(CollisionEnterEvent)
	assert.True(t, isEnter)

	// Frame 2: pair still touching -> Stay.
	seen = nil
	e.recordContact(a, b)
	e.flush()
	require.Len(t, seen, 1)
	_, isStay := seen[0].(CollisionStayEvent)
	assert.True(t, isStay)

	// Frame 3: pair no longer recorded -> Exit.
	seen = nil
	e.flush()
	require.Len(t, seen, 1)
	_, isExit := seen[0].(CollisionExitEvent)
	assert.True(t, isExit)
}

func TestEventsTriggerVsCollision(t *testing.T) {
	e := NewEvents()
	a, b := eventBody(t), eventBody(t)
	a.IsTrigger = true

	var got Event
	e.Subscribe(TriggerEnter, func(ev Event) { got = ev })
	e.recordContact(a, b)
	e.flush()

	require.NotNil(t, got)
	assert.Equal(t, TriggerEnter, got.Type())
}

func TestEventsBothSleepingSuppressed(t *testing.T) {
	e := NewEvents()
	a, b := eventBody(t), eventBody(t)
	a.Sleep()
	b.Sleep()

	var seen []Event
	e.Subscribe(CollisionEnter, func(ev Event) { seen = append(seen, ev) })
	e.recordContact(a, b)
	e.flush()

	assert.Empty(t, seen)
}

func TestEventsSleepWakeTransitions(t *testing.T) {
	e := NewEvents()
	rb := eventBody(t)

	var seen []Event
	e.Subscribe(OnSleep, func(ev Event) { seen = append(seen, ev) })
	e.Subscribe(OnWake, func(ev Event) { seen = append(seen, ev) })

	// First observation only seeds state, no transition fires.
	e.processSleepEvents([]*body.RigidBody{rb})
	assert.Empty(t, seen)

	rb.Sleep()
	e.processSleepEvents([]*body.RigidBody{rb})
	require.Len(t, seen, 1)
	assert.Equal(t, OnSleep, seen[0].Type())

	seen = nil
	rb.Awake()
	e.processSleepEvents([]*body.RigidBody{rb})
	require.Len(t, seen, 1)
	assert.Equal(t, OnWake, seen[0].Type())
}

func TestEventsForgetBodyDropsTrackedState(t *testing.T) {
	e := NewEvents()
	a, b := eventBody(t), eventBody(t)

	e.recordContact(a, b)
	e.flush() // rotates currentActivePairs into previousActivePairs

	e.forgetBody(a.Handle)

	for key := range e.previousActivePairs {
		assert.NotEqual(t, a.Handle, key.a)
		assert.NotEqual(t, a.Handle, key.b)
	}

	// With no trace of the pair left, a subsequent flush must not synthesize
	// a phantom Exit for it.
	var seen []Event
	e.Subscribe(CollisionExit, func(ev Event) { seen = append(seen, ev) })
	e.flush()
	assert.Empty(t, seen)
}
