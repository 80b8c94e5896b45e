package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// tetrahedron returns a closed, consistently-wound tetrahedron so every
// edge has exactly one twin - the invariant NewFromFaces relies on for any
// closed convex mesh.
func tetrahedron() ([]mgl64.Vec3, [][]int) {
	vertices := []mgl64.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	}
	faces := [][]int{
		{0, 2, 1},
		{0, 1, 3},
		{0, 3, 2},
		{1, 2, 3},
	}
	return vertices, faces
}

func TestNewFromFacesBuildsOneFacePerLoop(t *testing.T) {
	vertices, faces := tetrahedron()
	m, err := NewFromFaces(vertices, faces)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Faces) != 4 {
		t.Fatalf("expected 4 faces, got %d", len(m.Faces))
	}
	if len(m.HalfEdges) != 12 {
		t.Fatalf("expected 3 half-edges per triangular face (12 total), got %d", len(m.HalfEdges))
	}
}

func TestNewFromFacesResolvesEveryTwinOnAClosedMesh(t *testing.T) {
	vertices, faces := tetrahedron()
	m, err := NewFromFaces(vertices, faces)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, he := range m.HalfEdges {
		if he.Twin == -1 {
			t.Fatalf("half-edge %d has no twin on a closed mesh", i)
		}
		twin := m.HalfEdges[he.Twin]
		if twin.Twin != i {
			t.Fatalf("twin relationship not symmetric for half-edge %d", i)
		}
	}
}

func TestNewFromFacesRejectsDegenerateFace(t *testing.T) {
	vertices := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}}
	faces := [][]int{{0, 1}}

	if _, err := NewFromFaces(vertices, faces); err == nil {
		t.Fatal("expected an error for a face with fewer than 3 vertices")
	}
}

func TestFaceVerticesWalksTheFaceLoop(t *testing.T) {
	vertices, faces := tetrahedron()
	m, err := NewFromFaces(vertices, faces)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verts := m.FaceVertices(0)
	if len(verts) != 3 {
		t.Fatalf("expected 3 vertices for a triangular face, got %d", len(verts))
	}
	for i, want := range []int{0, 2, 1} {
		if verts[i] != vertices[want] {
			t.Fatalf("face vertex %d mismatch: got %v, want %v", i, verts[i], vertices[want])
		}
	}
}
