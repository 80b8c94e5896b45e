package gjk

import "github.com/go-gl/mathgl/mgl64"

// ConvexSupporter is a single convex shape queried in world space, the
// target of a ray cast (as opposed to Supporter, which pairs two shapes for
// overlap testing).
type ConvexSupporter interface {
	SupportWorld(direction mgl64.Vec3) mgl64.Vec3
}

// rayVert is one vertex of the walking simplex: w is the Minkowski point
// (x - support(shape, -v)), p is the shape support point it came from (the
// point we report as the hit location once lambda converges).
type rayVert struct {
	w, p mgl64.Vec3
}

// Raycast walks origin+lambda*dir toward shape using conservative
// advancement: at each step it asks for the support point opposing the
// current separating direction v, and either shrinks v (the ray has not
// yet reached the shape) or advances lambda along dir until the plane
// through the support point is crossed. Terminates with a hit (point and
// outward normal from the witness simplex) or a miss if the ray would
// have to move away from the shape to keep advancing.
func Raycast(shape ConvexSupporter, origin, dir mgl64.Vec3, maxLambda float64, eps float64) (hit bool, lambda float64, point, normal mgl64.Vec3) {
	lambda = 0
	x := origin
	verts := make([]rayVert, 0, 4)

	v := x.Sub(shape.SupportWorld(mgl64.Vec3{1, 0, 0}))
	if v.LenSqr() < eps*eps {
		v = mgl64.Vec3{1, 0, 0}
	}

	const maxIterations = 64
	for i := 0; i < maxIterations; i++ {
		p := shape.SupportWorld(v.Mul(-1))
		w := x.Sub(p)

		if v.Dot(w) > 0 {
			if v.Dot(dir) >= 0 {
				return false, 0, mgl64.Vec3{}, mgl64.Vec3{}
			}
			lambda -= v.Dot(w) / v.Dot(dir)
			if lambda > maxLambda {
				return false, 0, mgl64.Vec3{}, mgl64.Vec3{}
			}
			x = origin.Add(dir.Mul(lambda))
			normal = v
		}

		verts = append(verts, rayVert{w: x.Sub(p), p: p})
		var closest mgl64.Vec3
		closest, verts = closestOnSimplex(verts)
		v = closest.Mul(-1)

		if v.LenSqr() < eps*eps || len(verts) == 4 {
			point = x
			if normal.LenSqr() < 1e-16 {
				normal = v
			}
			if normal.LenSqr() > 1e-16 {
				normal = normal.Normalize()
			}
			return true, lambda, point, normal
		}
	}

	return false, 0, mgl64.Vec3{}, mgl64.Vec3{}
}

// closestOnSimplex reduces verts to the minimal subset spanning the feature
// closest to the origin and returns that closest point. Mirrors the
// Voronoi-region reduction in gjk.go but tracks the actual closest point
// rather than just a search direction, since a ray cast needs the distance.
func closestOnSimplex(verts []rayVert) (mgl64.Vec3, []rayVert) {
	switch len(verts) {
	case 1:
		return verts[0].w, verts
	case 2:
		return closestOnLine(verts)
	case 3:
		return closestOnTriangle(verts)
	default:
		return closestOnTetra(verts)
	}
}

func closestOnLine(verts []rayVert) (mgl64.Vec3, []rayVert) {
	a, b := verts[1].w, verts[0].w
	ab := b.Sub(a)
	t := -a.Dot(ab) / maxf(ab.LenSqr(), 1e-18)
	if t <= 0 {
		return a, []rayVert{verts[1]}
	}
	if t >= 1 {
		return b, []rayVert{verts[0]}
	}
	return a.Add(ab.Mul(t)), verts
}

func closestOnTriangle(verts []rayVert) (mgl64.Vec3, []rayVert) {
	a, b, c := verts[2].w, verts[1].w, verts[0].w
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)

	d1 := ab.Dot(ao)
	d2 := ac.Dot(ao)
	if d1 <= 0 && d2 <= 0 {
		return a, []rayVert{verts[2]}
	}

	bo := b.Mul(-1)
	d3 := ab.Dot(bo)
	d4 := ac.Dot(bo)
	if d3 >= 0 && d4 <= d3 {
		return b, []rayVert{verts[1]}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		t := d1 / (d1 - d3)
		return a.Add(ab.Mul(t)), []rayVert{verts[2], verts[1]}
	}

	co := c.Mul(-1)
	d5 := ab.Dot(co)
	d6 := ac.Dot(co)
	if d6 >= 0 && d5 <= d6 {
		return c, []rayVert{verts[0]}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		t := d2 / (d2 - d6)
		return a.Add(ac.Mul(t)), []rayVert{verts[2], verts[0]}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		t := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(t)), []rayVert{verts[1], verts[0]}
	}

	denom := 1.0 / (va + vb + vc)
	vv := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(vv)).Add(ac.Mul(w)), verts
}

// closestOnTetra falls back to the nearest face's triangle closest-point;
// a ray cast against a single convex only needs this for unusually thin
// shapes where 3 points aren't enough to bracket the origin.
func closestOnTetra(verts []rayVert) (mgl64.Vec3, []rayVert) {
	best := verts[:3]
	bestPt, _ := closestOnTriangle(best)
	bestLenSqr := bestPt.LenSqr()

	faces := [][3]int{{3, 2, 1}, {3, 1, 0}, {3, 0, 2}, {2, 0, 1}}
	for _, f := range faces {
		tri := []rayVert{verts[f[0]], verts[f[1]], verts[f[2]]}
		pt, reduced := closestOnTriangle(tri)
		if pt.LenSqr() < bestLenSqr {
			bestPt, best, bestLenSqr = pt, reduced, pt.LenSqr()
		}
	}
	return bestPt, best
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
