package shape

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/spatial"
)

// Composite is a concave collider that recursively groups child colliders
// (convex or concave) under one world transform.
type Composite struct {
	base
	Children        []Collider
	offsets         []spatial.Transform // each child's transform relative to the composite
	childWorldXform []spatial.Transform // resolved per-child world transform, refreshed each SetWorldTransform
}

func NewComposite(children []Collider, offsets []spatial.Transform) *Composite {
	return &Composite{Children: children, offsets: offsets, childWorldXform: make([]spatial.Transform, len(children))}
}

func (c *Composite) Kind() Kind { return KindConcave }

func (c *Composite) SetWorldTransform(t spatial.Transform) {
	var combined spatial.AABB
	for i, child := range c.Children {
		childTransform := compose(t, c.offsets[i])
		c.childWorldXform[i] = childTransform
		child.SetWorldTransform(childTransform)
		if i == 0 {
			combined = child.AABB()
		} else {
			combined = combined.Expand(child.AABB())
		}
	}
	c.markUpdated(combined)
}

func compose(parent, local spatial.Transform) spatial.Transform {
	return spatial.Transform{
		Position:        parent.Position.Add(parent.Rotation.Rotate(local.Position)),
		Rotation:        parent.Rotation.Mul(local.Rotation).Normalize(),
		InverseRotation: parent.Rotation.Mul(local.Rotation).Normalize().Inverse(),
	}
}

// ProcessOverlappingParts recurses into children whose AABB overlaps the
// query, yielding convex children through fn and recursing into concave
// children. Enumeration order follows Children.
func (c *Composite) ProcessOverlappingParts(aabb spatial.AABB, eps float64, fn func(Convex, spatial.Transform)) {
	for i, child := range c.Children {
		if !child.AABB().Overlaps(aabb, eps) {
			continue
		}
		switch cc := child.(type) {
		case Convex:
			fn(cc, c.childWorldXform[i])
		case Concave:
			cc.ProcessOverlappingParts(aabb, eps, fn)
		}
	}
}

// ProcessIntersectingParts recurses into children whose AABB is pierced by
// the ray, yielding convex children through fn and recursing into concave
// children.
func (c *Composite) ProcessIntersectingParts(origin, dir mgl64.Vec3, eps float64, fn func(Convex, spatial.Transform)) {
	for i, child := range c.Children {
		if hit, _ := child.AABB().RayIntersect(origin, dir, eps); !hit {
			continue
		}
		switch cc := child.(type) {
		case Convex:
			fn(cc, c.childWorldXform[i])
		case Concave:
			cc.ProcessIntersectingParts(origin, dir, eps, fn)
		}
	}
}
