// Package epa implements the Expanding Polytope Algorithm for computing
// penetration depth.
//
// EPA runs after GJK has found a tetrahedron containing the origin in the
// Minkowski difference space. It expands that tetrahedron into a polytope
// that hugs the origin, converging on the face closest to it - the
// Minimum Translation Vector (MTV) that separates the two shapes.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation
//     on 3D Game Objects" (2001)
package epa

import (
	"fmt"
	"math"

	"github.com/ignis-engine/physics/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EPAMaxIterations limits polytope expansion to prevent infinite loops.
	EPAMaxIterations = 32

	// EPAConvergenceTolerance is the minimum per-iteration improvement in
	// distance to origin; below this the closest face is accepted as final.
	EPAConvergenceTolerance = 0.001

	// EPAMinFaceDistance is the minimum face distance before it is treated
	// as degenerate and skipped.
	EPAMinFaceDistance = 0.0001

	// NormalSnapThreshold clamps near-zero normal components to exactly
	// zero, steadying axis-aligned contacts against float noise.
	NormalSnapThreshold = 1e-8

	// DegeneratePenetrationEstimate is the fallback depth reported when
	// GJK handed EPA fewer than 4 simplex points to expand.
	DegeneratePenetrationEstimate = 0.01

	polytopeInitialCapacity = 32
)

// Result is the raw penetration query: how far apart the shapes are along
// Normal (negative of, since they overlap - Depth is always >= 0) and the
// direction, pointing from a toward b, along which to separate them.
type Result struct {
	Normal mgl64.Vec3
	Depth  float64
}

// EPA computes the penetration depth and separating normal for two
// Supporters already known (via gjk.GJK) to overlap, using the package
// defaults for the minimum face distance and iteration cap. simplex must be
// GJK's final tetrahedron. Contact-point generation from the result is the
// manifold package's job, not EPA's - EPA only answers "how deep, which way".
func EPA(a, b gjk.Supporter, simplex *gjk.Simplex) (Result, error) {
	return EPAWithConfig(a, b, simplex, EPAMinFaceDistance, EPAMaxIterations)
}

// EPAWithConfig is EPA with the minimum face distance (spec.md S6's
// epaMinFaceDelta) and iteration cap taken from the caller's configuration
// instead of the package defaults.
func EPAWithConfig(a, b gjk.Supporter, simplex *gjk.Simplex, minFaceDistance float64, maxIterations int) (Result, error) {
	if simplex.Count < 4 {
		return degenerateResult(simplex), nil
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	builder.Reset()
	defer polytopeBuilderPool.Put(builder)

	if err := builder.BuildInitialFaces(simplex); err != nil {
		return Result{}, err
	}

	for i := 0; i < maxIterations; i++ {
		if len(builder.faces) == 0 {
			break
		}

		closestIndex := builder.FindClosestFaceIndex()
		closest := builder.faces[closestIndex]

		if closest.Distance < minFaceDistance {
			builder.faces = append(builder.faces[:closestIndex], builder.faces[closestIndex+1:]...)
			continue
		}

		support := gjk.MinkowskiSupport(a, b, closest.Normal)
		distance := support.Dot(closest.Normal)

		if distance-closest.Distance < EPAConvergenceTolerance {
			return Result{Normal: closest.Normal, Depth: closest.Distance}, nil
		}

		if err := builder.AddPointAndRebuildFaces(support, closestIndex); err != nil {
			return Result{}, err
		}
	}

	return Result{}, fmt.Errorf("epa: failed to converge after %d iterations", maxIterations)
}

// degenerateResult estimates a penetration result when GJK's simplex never
// grew to a full tetrahedron - rare, but possible for shapes barely
// touching or for numerically thin Minkowski differences.
func degenerateResult(simplex *gjk.Simplex) Result {
	if simplex.Count >= 2 {
		a, b := simplex.Points[0], simplex.Points[1]
		distA, distB := a.Len(), b.Len()

		if distA < distB {
			return Result{Normal: safeNormalize(a), Depth: distA}
		}
		return Result{Normal: safeNormalize(b), Depth: distB}
	}

	if simplex.Count == 1 {
		return Result{Normal: safeNormalize(simplex.Points[0]), Depth: DegeneratePenetrationEstimate}
	}

	return Result{Normal: mgl64.Vec3{0, 1, 0}, Depth: DegeneratePenetrationEstimate}
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	if v.LenSqr() < NormalSnapThreshold*NormalSnapThreshold {
		return mgl64.Vec3{0, 1, 0}
	}
	return v.Normalize()
}

// snapNormalToAxis clamps near-zero components of normal to exactly zero
// and renormalizes, steadying axis-aligned collisions (box resting flat on
// a plane) against float noise that would otherwise leak into tangent
// directions.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	x, y, z := normal[0], normal[1], normal[2]
	if math.Abs(x) < NormalSnapThreshold {
		x = 0
	}
	if math.Abs(y) < NormalSnapThreshold {
		y = 0
	}
	if math.Abs(z) < NormalSnapThreshold {
		z = 0
	}

	clamped := mgl64.Vec3{x, y, z}
	length := clamped.Len()
	if length < 1e-8 {
		return mgl64.Vec3{0, 1, 0}
	}
	return clamped.Mul(1.0 / length)
}
