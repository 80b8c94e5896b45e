package physics

import (
	"github.com/ignis-engine/physics/body"
	"github.com/ignis-engine/physics/constraint"
)

// unionFind is a disjoint-set structure over indices into a World's body
// slice, rebuilt fresh every step from that step's active contact and
// constraint graph (spec.md S9: "implementable as a union-find rebuilt each
// frame from active manifolds").
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// propagateSleep links every pair of bodies touching this step - active
// contacts plus every user constraint implementing constraint.Bodied - into
// islands, then wakes every body in an island that contains at least one
// non-sleeping body. A link through a Static body is never made: two
// dynamic islands separated only by a shared static floor must stay
// independent, or one island's activity would never let the other sleep.
func (w *World) propagateSleep(pairs []BodyPair) {
	index := make(map[body.BodyHandle]int, len(w.bodies))
	for i, rb := range w.bodies {
		index[rb.Handle] = i
	}

	uf := newUnionFind(len(w.bodies))

	link := func(a, b *body.RigidBody) {
		if a.BodyType == body.Static || b.BodyType == body.Static {
			return
		}
		ia, okA := index[a.Handle]
		ib, okB := index[b.Handle]
		if okA && okB {
			uf.union(ia, ib)
		}
	}

	for _, pair := range pairs {
		link(pair.BodyA, pair.BodyB)
	}
	for _, c := range w.constraints {
		if bodied, ok := c.(constraint.Bodied); ok {
			a, b := bodied.Bodies()
			link(a, b)
		}
	}

	awakeRoot := make(map[int]bool, len(w.bodies))
	for i, rb := range w.bodies {
		if rb.BodyType != body.Static && !rb.IsSleeping {
			awakeRoot[uf.find(i)] = true
		}
	}

	for i, rb := range w.bodies {
		if rb.BodyType == body.Static || !rb.IsSleeping {
			continue
		}
		if awakeRoot[uf.find(i)] {
			rb.Awake()
		}
	}
}

// updateMotionAndSleep is the step's final per-body pass (spec.md S4.7-8):
// advance each dynamic/kinematic body's sleep dwell timer, then propagate
// wakefulness transitively across this step's contact/constraint graph so
// an island never has some members asleep and others awake.
func (w *World) updateMotionAndSleep(dt float64, pairs []BodyPair) {
	for _, rb := range w.bodies {
		if rb.BodyType == body.Static {
			continue
		}
		rb.TrySleep(dt, w.config.SleepTimeThreshold, w.config.SleepMotionThreshold, w.config.SleepMotionBias)
	}
	w.propagateSleep(pairs)
}
