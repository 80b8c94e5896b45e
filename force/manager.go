package force

import "github.com/ignis-engine/physics/body"

type binding struct {
	rb    *body.RigidBody
	force Force
}

// Manager holds (body, force) subscriptions and is the applyForces step of
// the simulation loop: it clears every bound body's accumulators, then
// applies every bound force once. Clearing happens here rather than in the
// integrator so a force's effect is still observable for the tick it was
// applied on.
type Manager struct {
	bindings []binding
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Add(rb *body.RigidBody, f Force) {
	m.bindings = append(m.bindings, binding{rb: rb, force: f})
}

func (m *Manager) Remove(rb *body.RigidBody, f Force) {
	for i, bd := range m.bindings {
		if bd.rb == rb && bd.force == f {
			m.bindings = append(m.bindings[:i], m.bindings[i+1:]...)
			return
		}
	}
}

// RemoveBody drops every binding referencing rb, used when a body leaves
// the world.
func (m *Manager) RemoveBody(rb *body.RigidBody) {
	kept := m.bindings[:0]
	for _, bd := range m.bindings {
		if bd.rb != rb {
			kept = append(kept, bd)
		}
	}
	m.bindings = kept
}

// ApplyForces clears every subscribed body's force/torque accumulators,
// then applies every bound force. Sleeping bodies are skipped entirely so
// a permanently-bound emitter like gravity cannot keep the world awake.
func (m *Manager) ApplyForces() {
	for _, bd := range m.bindings {
		if bd.rb.IsSleeping {
			continue
		}
		bd.rb.ClearForces()
	}
	for _, bd := range m.bindings {
		if bd.rb.IsSleeping {
			continue
		}
		bd.force.Apply(bd.rb)
	}
}
