package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 4096: 4096, 4097: 8192}
	for in, want := range cases {
		assert.Equal(t, want, nextPowerOfTwo(in), "nextPowerOfTwo(%d)", in)
	}
}

func TestSpatialGridWorldToCell(t *testing.T) {
	sg := newSpatialGrid(2.0, 16)

	assert.Equal(t, cellKey{0, 0, 0}, sg.worldToCell(mgl64.Vec3{0, 0, 0}))
	assert.Equal(t, cellKey{0, 0, 0}, sg.worldToCell(mgl64.Vec3{1.9, 1.9, 1.9}))
	assert.Equal(t, cellKey{1, 0, 0}, sg.worldToCell(mgl64.Vec3{2.0, 0, 0}))
	assert.Equal(t, cellKey{-1, 0, 0}, sg.worldToCell(mgl64.Vec3{-0.1, 0, 0}))
}

func TestSpatialGridHashCellWithinMask(t *testing.T) {
	sg := newSpatialGrid(1.0, 16)
	for x := -50; x < 50; x += 7 {
		idx := sg.hashCell(cellKey{x, x * 3, -x})
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(sg.cells))
	}
}

func newTestBody(t *testing.T, handle body.BodyHandle, bt body.BodyType, pos mgl64.Vec3) *body.RigidBody {
	t.Helper()
	transform := spatial.NewTransform()
	transform.Position = pos
	rb := body.NewRigidBody(handle, transform, shape.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), bt, 1.0)
	return rb
}

func TestSpatialGridFindPairsOverlapping(t *testing.T) {
	sg := newSpatialGrid(2.0, 64)

	a := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{0, 0, 0})
	b := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{0.5, 0, 0})
	c := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{100, 100, 100})

	pairs := sg.findPairs([]*body.RigidBody{a, b, c})

	require.Len(t, pairs, 1)
	assert.True(t, (pairs[0].BodyA == a && pairs[0].BodyB == b) || (pairs[0].BodyA == b && pairs[0].BodyB == a))
}

func TestSpatialGridExcludesStaticStaticPairs(t *testing.T) {
	sg := newSpatialGrid(2.0, 64)

	a := newTestBody(t, body.NewBodyHandle(), body.Static, mgl64.Vec3{0, 0, 0})
	b := newTestBody(t, body.NewBodyHandle(), body.Static, mgl64.Vec3{0.5, 0, 0})

	pairs := sg.findPairs([]*body.RigidBody{a, b})
	assert.Empty(t, pairs)
}

func TestSpatialGridExcludesBothSleepingPairs(t *testing.T) {
	sg := newSpatialGrid(2.0, 64)

	a := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{0, 0, 0})
	b := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{0.5, 0, 0})
	a.Sleep()
	b.Sleep()

	pairs := sg.findPairs([]*body.RigidBody{a, b})
	assert.Empty(t, pairs)
}

func TestSpatialGridNoPairForDisjointBodies(t *testing.T) {
	sg := newSpatialGrid(2.0, 64)

	a := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{0, 0, 0})
	b := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{50, 0, 0})

	pairs := sg.findPairs([]*body.RigidBody{a, b})
	assert.Empty(t, pairs)
}

func TestSpatialGridPairsDeduplicated(t *testing.T) {
	// Three mutually overlapping bodies sharing several grid cells must
	// still produce exactly 3 unordered pairs, not one per cell visited.
	sg := newSpatialGrid(10.0, 64)

	a := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{0, 0, 0})
	b := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{0.2, 0, 0})
	c := newTestBody(t, body.NewBodyHandle(), body.Dynamic, mgl64.Vec3{-0.2, 0, 0})

	pairs := sg.findPairs([]*body.RigidBody{a, b, c})
	assert.Len(t, pairs, 3)
}
