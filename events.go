package physics

import (
	"bytes"

	"github.com/ignis-engine/physics/body"
)

// EventType distinguishes the eight lifecycle notifications a World can
// emit, adapted from the teacher's Events system onto handle-keyed pairs
// instead of raw body pointers (bodies may be removed and their slot
// reused, which would otherwise alias an old pointer to a new body).
type EventType uint8

const (
	TriggerEnter EventType = iota
	CollisionEnter
	TriggerStay
	CollisionStay
	TriggerExit
	CollisionExit
	OnSleep
	OnWake
)

// pairKey canonically orders a body-pair so (A,B) and (B,A) hash identically.
type pairKey struct {
	a, b body.BodyHandle
}

func makePairKey(a, b body.BodyHandle) pairKey {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Event is the common interface every emitted notification implements.
type Event interface {
	Type() EventType
}

type TriggerEnterEvent struct{ BodyA, BodyB body.BodyHandle }
type TriggerStayEvent struct{ BodyA, BodyB body.BodyHandle }
type TriggerExitEvent struct{ BodyA, BodyB body.BodyHandle }
type CollisionEnterEvent struct{ BodyA, BodyB body.BodyHandle }
type CollisionStayEvent struct{ BodyA, BodyB body.BodyHandle }
type CollisionExitEvent struct{ BodyA, BodyB body.BodyHandle }
type SleepEvent struct{ Body body.BodyHandle }
type WakeEvent struct{ Body body.BodyHandle }

func (e TriggerEnterEvent) Type() EventType   { return TriggerEnter }
func (e TriggerStayEvent) Type() EventType    { return TriggerStay }
func (e TriggerExitEvent) Type() EventType    { return TriggerExit }
func (e CollisionEnterEvent) Type() EventType { return CollisionEnter }
func (e CollisionStayEvent) Type() EventType  { return CollisionStay }
func (e CollisionExitEvent) Type() EventType  { return CollisionExit }
func (e SleepEvent) Type() EventType          { return OnSleep }
func (e WakeEvent) Type() EventType           { return OnWake }

// EventListener is a callback registered against one EventType.
type EventListener func(event Event)

// activePair is what recordContact tracks per contacting pair for this
// frame: the handles plus whether either side is a trigger (determines
// Collision* vs Trigger* on flush) and whether both are asleep (suppresses
// the pair entirely, matching the teacher's spam-avoidance rule).
type activePair struct {
	isTrigger     bool
	bothSleeping  bool
}

// Events is the World's notification hub: it tracks which pairs are
// currently in contact to derive Enter/Stay/Exit transitions, tracks each
// body's sleep state to derive Sleep/Wake transitions, buffers everything
// produced during a step, and dispatches to subscribers on flush.
type Events struct {
	listeners map[EventType][]EventListener

	buffer []Event

	previousActivePairs map[pairKey]activePair
	currentActivePairs  map[pairKey]activePair

	sleepStates map[body.BodyHandle]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 64),
		previousActivePairs: make(map[pairKey]activePair),
		currentActivePairs:  make(map[pairKey]activePair),
		sleepStates:         make(map[body.BodyHandle]bool),
	}
}

// Subscribe adds a listener for an event type.
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContact marks one contact pair active for this frame; called once
// per pair that ended narrow-phase Intersecting (trigger and both-asleep
// pairs included, though they get no ContactConstraint), before the PGS
// solve runs.
func (e *Events) recordContact(a, b *body.RigidBody) {
	key := makePairKey(a.Handle, b.Handle)
	e.currentActivePairs[key] = activePair{
		isTrigger:    a.IsTrigger || b.IsTrigger,
		bothSleeping: a.IsSleeping && b.IsSleeping,
	}
}

// forgetBody drops every trace of handle from the tracked pair/sleep state,
// called when a body is removed so a future unrelated body cannot inherit a
// stale Enter/Exit transition.
func (e *Events) forgetBody(handle body.BodyHandle) {
	delete(e.sleepStates, handle)
	for key := range e.previousActivePairs {
		if key.a == handle || key.b == handle {
			delete(e.previousActivePairs, key)
		}
	}
	for key := range e.currentActivePairs {
		if key.a == handle || key.b == handle {
			delete(e.currentActivePairs, key)
		}
	}
}

// processCollisionEvents compares this frame's active pairs against the
// prior frame's to derive Enter/Stay/Exit, then rotates current into
// previous for next frame.
func (e *Events) processCollisionEvents() {
	for key, info := range e.currentActivePairs {
		if info.bothSleeping {
			continue
		}
		if _, was := e.previousActivePairs[key]; was {
			if info.isTrigger {
				e.buffer = append(e.buffer, TriggerStayEvent{BodyA: key.a, BodyB: key.b})
			} else {
				e.buffer = append(e.buffer, CollisionStayEvent{BodyA: key.a, BodyB: key.b})
			}
		} else {
			if info.isTrigger {
				e.buffer = append(e.buffer, TriggerEnterEvent{BodyA: key.a, BodyB: key.b})
			} else {
				e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: key.a, BodyB: key.b})
			}
		}
	}

	for key, info := range e.previousActivePairs {
		if _, still := e.currentActivePairs[key]; !still {
			if info.isTrigger {
				e.buffer = append(e.buffer, TriggerExitEvent{BodyA: key.a, BodyB: key.b})
			} else {
				e.buffer = append(e.buffer, CollisionExitEvent{BodyA: key.a, BodyB: key.b})
			}
		}
	}

	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// processSleepEvents compares every body's current IsSleeping flag against
// its last-observed state and buffers Sleep/Wake transitions.
func (e *Events) processSleepEvents(bodies []*body.RigidBody) {
	for _, rb := range bodies {
		tracked, exists := e.sleepStates[rb.Handle]
		if !exists {
			e.sleepStates[rb.Handle] = rb.IsSleeping
			continue
		}
		if !tracked && rb.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: rb.Handle})
			e.sleepStates[rb.Handle] = true
		} else if tracked && !rb.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: rb.Handle})
			e.sleepStates[rb.Handle] = false
		}
	}
}

// flush derives collision transitions, dispatches every buffered event to
// its subscribers, then clears the buffer for the next step.
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
