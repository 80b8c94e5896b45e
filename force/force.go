// Package force implements the force-emitter stage that runs before
// velocity integration each step: a Force writes into a body's force/torque
// accumulators, and a Manager applies every bound emitter once per tick
// after clearing the previous tick's accumulators.
package force

import "github.com/ignis-engine/physics/body"

// Force changes a RigidBody's motion by accumulating into its force/torque
// buffers; it never touches velocity or position directly.
type Force interface {
	Apply(rb *body.RigidBody)
}
