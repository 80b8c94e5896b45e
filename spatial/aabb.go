// Package spatial implements the bounding-volume math shared by every
// collider and rigid body: AABBs and rigid transforms.
package spatial

import "github.com/go-gl/mathgl/mgl64"

// AABB is an axis-aligned bounding box. The zero value is degenerate
// (Min > Max on every axis is never produced by the constructors below).
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint reports whether point lies inside the box, inclusive of
// its faces.
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps reports whether a and other intersect, using a symmetric
// axis-wise inclusive test with slack eps on every axis.
func (a AABB) Overlaps(other AABB, eps float64) bool {
	return a.Max.X()+eps >= other.Min.X() && a.Min.X()-eps <= other.Max.X() &&
		a.Max.Y()+eps >= other.Min.Y() && a.Min.Y()-eps <= other.Max.Y() &&
		a.Max.Z()+eps >= other.Min.Z() && a.Min.Z()-eps <= other.Max.Z()
}

// Expand returns the smallest AABB enclosing both a and b.
func (a AABB) Expand(b AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{min3(a.Min.X(), b.Min.X()), min3(a.Min.Y(), b.Min.Y()), min3(a.Min.Z(), b.Min.Z())},
		Max: mgl64.Vec3{max3(a.Max.X(), b.Max.X()), max3(a.Max.Y(), b.Max.Y()), max3(a.Max.Z(), b.Max.Z())},
	}
}

// SurfaceArea returns twice the sum of the face areas (the usual SAH cost
// proxy used by BVH-style broad-phases).
func (a AABB) SurfaceArea() float64 {
	d := a.Max.Sub(a.Min)
	return 2 * (d.X()*d.Y() + d.Y()*d.Z() + d.Z()*d.X())
}

// Transform returns the AABB of the 8 corners of a transformed by m,
// correct for arbitrary affine rotation/translation: it encloses the
// transformed corners rather than transforming the existing extents.
func (a AABB) Transform(position mgl64.Vec3, rotation mgl64.Quat) AABB {
	corners := [8]mgl64.Vec3{
		{a.Min.X(), a.Min.Y(), a.Min.Z()}, {a.Max.X(), a.Min.Y(), a.Min.Z()},
		{a.Min.X(), a.Max.Y(), a.Min.Z()}, {a.Max.X(), a.Max.Y(), a.Min.Z()},
		{a.Min.X(), a.Min.Y(), a.Max.Z()}, {a.Max.X(), a.Min.Y(), a.Max.Z()},
		{a.Min.X(), a.Max.Y(), a.Max.Z()}, {a.Max.X(), a.Max.Y(), a.Max.Z()},
	}

	world := rotation.Rotate(corners[0]).Add(position)
	min, max := world, world
	for i := 1; i < 8; i++ {
		world = rotation.Rotate(corners[i]).Add(position)
		min[0], min[1], min[2] = minf(min[0], world[0]), minf(min[1], world[1]), minf(min[2], world[2])
		max[0], max[1], max[2] = maxf(max[0], world[0]), maxf(max[1], world[1]), maxf(max[2], world[2])
	}
	return AABB{Min: min, Max: max}
}

// RayIntersect performs a branchless slab test of the ray (origin, dir)
// against a, with slack eps. Returns whether the ray hits the box and, if
// so, the entry distance tMin along dir.
func (a AABB) RayIntersect(origin, dir mgl64.Vec3, eps float64) (bool, float64) {
	tMin, tMax := -1e30, 1e30

	for axis := 0; axis < 3; axis++ {
		d := dir[axis]
		o := origin[axis]
		lo := a.Min[axis] - eps
		hi := a.Max[axis] + eps

		if d == 0 {
			if o < lo || o > hi {
				return false, 0
			}
			continue
		}

		invD := 1.0 / d
		t1 := (lo - o) * invD
		t2 := (hi - o) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = maxf(tMin, t1)
		tMax = minf(tMax, t2)
		if tMin > tMax {
			return false, 0
		}
	}

	if tMax < 0 {
		return false, 0
	}
	return true, maxf(tMin, 0)
}

func min3(a, b float64) float64 { return minf(a, b) }
func max3(a, b float64) float64 { return maxf(a, b) }

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
