package raster

import (
	"testing"

	"github.com/soft3d/trirast/pkg/frame"
	"github.com/soft3d/trirast/pkg/linalg"
	"github.com/soft3d/trirast/pkg/mesh"
	"github.com/soft3d/trirast/pkg/texture"
)

func solidTexture(t *testing.T, r, g, b byte) *texture.Texture {
	t.Helper()
	tex, err := texture.New(1, 1, texture.OrderBGR, []byte{b, g, r})
	if err != nil {
		t.Fatalf("texture.New: %v", err)
	}
	return tex
}

// TestTopRowFullCoverage pins the hand-derived result of rasterizing the
// triangle (0,0), (1,0), (0,1) (normalized screen coords) against a 2x2
// target: the top row is fully covered by the upper-left half-triangle.
func TestTopRowFullCoverage(t *testing.T) {
	tex := solidTexture(t, 255, 0, 0)
	target := frame.New(2, 2)
	target.Clear(frame.RGBA(0, 0, 0, 255))

	v1 := screenVertex{Xn: 0, Yn: 0, Z: 0.5}
	v2 := screenVertex{Xn: 1, Yn: 0, Z: 0.5}
	v3 := screenVertex{Xn: 0, Yn: 1, Z: 0.5}
	rasterizeTriangle(v1, v2, v3, tex, target)

	for _, idx := range []int{0, 1} {
		if target.Color[idx] == frame.RGBA(0, 0, 0, 255) {
			t.Errorf("top row pixel %d not covered", idx)
		}
		if target.Depth[idx] != 0.5 {
			t.Errorf("top row pixel %d depth = %v, want 0.5", idx, target.Depth[idx])
		}
	}
}

// TestDegenerateTriangleDrawsNothing checks the zero-vertical-extent case:
// dyAB == 0 and dyBC == 0 (all three vertices share a screen row).
func TestDegenerateTriangleDrawsNothing(t *testing.T) {
	tex := solidTexture(t, 255, 255, 255)
	target := frame.New(4, 4)
	clearColor := frame.RGBA(9, 9, 9, 255)
	target.Clear(clearColor)

	v1 := screenVertex{Xn: 0, Yn: 0.5, Z: 0.1}
	v2 := screenVertex{Xn: 0.5, Yn: 0.5, Z: 0.1}
	v3 := screenVertex{Xn: 1, Yn: 0.5, Z: 0.1}
	rasterizeTriangle(v1, v2, v3, tex, target)

	for i, c := range target.Color {
		if c != clearColor {
			t.Errorf("pixel %d = %#x, want untouched clear color %#x", i, c, clearColor)
		}
	}
	for i, d := range target.Depth {
		if d != frame.NoCoverage {
			t.Errorf("depth %d = %v, want untouched NoCoverage", i, d)
		}
	}
}

// TestDepthTestNearerWins verifies the min-depth write rule: a nearer
// (smaller z) triangle drawn after a farther one still overwrites it, and a
// farther triangle drawn after a nearer one does not.
func TestDepthTestNearerWins(t *testing.T) {
	farTex := solidTexture(t, 255, 0, 0)
	nearTex := solidTexture(t, 0, 255, 0)

	full := func() (screenVertex, screenVertex, screenVertex) {
		return screenVertex{Xn: 0, Yn: 0}, screenVertex{Xn: 1, Yn: 0}, screenVertex{Xn: 0, Yn: 1}
	}

	t.Run("nearer after farther overwrites", func(t *testing.T) {
		target := frame.New(2, 2)
		target.Clear(0)
		v1, v2, v3 := full()
		v1.Z, v2.Z, v3.Z = 0.8, 0.8, 0.8
		rasterizeTriangle(v1, v2, v3, farTex, target)
		v1.Z, v2.Z, v3.Z = 0.2, 0.2, 0.2
		rasterizeTriangle(v1, v2, v3, nearTex, target)

		if target.Color[0] != frame.RGBA(0, 255, 0, 255) {
			t.Errorf("Color[0] = %#x, want green (nearer wins)", target.Color[0])
		}
		if target.Depth[0] != 0.2 {
			t.Errorf("Depth[0] = %v, want 0.2", target.Depth[0])
		}
	})

	t.Run("farther after nearer does not overwrite", func(t *testing.T) {
		target := frame.New(2, 2)
		target.Clear(0)
		v1, v2, v3 := full()
		v1.Z, v2.Z, v3.Z = 0.2, 0.2, 0.2
		rasterizeTriangle(v1, v2, v3, nearTex, target)
		v1.Z, v2.Z, v3.Z = 0.8, 0.8, 0.8
		rasterizeTriangle(v1, v2, v3, farTex, target)

		if target.Color[0] != frame.RGBA(0, 255, 0, 255) {
			t.Errorf("Color[0] = %#x, want green (nearer stays)", target.Color[0])
		}
		if target.Depth[0] != 0.2 {
			t.Errorf("Depth[0] = %v, want 0.2", target.Depth[0])
		}
	})
}

// TestViewportSafety ensures triangles extending outside the viewport never
// panic and never write beyond the buffer bounds.
func TestViewportSafety(t *testing.T) {
	tex := solidTexture(t, 1, 2, 3)
	target := frame.New(3, 3)
	target.Clear(0)

	v1 := screenVertex{Xn: -2, Yn: -2, Z: 0.5}
	v2 := screenVertex{Xn: 3, Yn: -1, Z: 0.5}
	v3 := screenVertex{Xn: -1, Yn: 3, Z: 0.5}
	rasterizeTriangle(v1, v2, v3, tex, target)

	if len(target.Color) != 9 || len(target.Depth) != 9 {
		t.Fatalf("buffer sizes changed: color=%d depth=%d", len(target.Color), len(target.Depth))
	}
}

// TestSortByYOrdersAscending checks the three-swap sort in isolation,
// including the tie-breaking behavior (equal y does not swap).
func TestSortByYOrdersAscending(t *testing.T) {
	v1 := screenVertex{Yn: 0.5}
	v2 := screenVertex{Yn: 0.1}
	v3 := screenVertex{Yn: 0.9}
	sortByY(&v1, &v2, &v3)
	if !(v1.Yn <= v2.Yn && v2.Yn <= v3.Yn) {
		t.Errorf("not sorted ascending: %v %v %v", v1.Yn, v2.Yn, v3.Yn)
	}

	a := screenVertex{Xn: 10, Yn: 0}
	b := screenVertex{Xn: 20, Yn: 0}
	c := screenVertex{Xn: 30, Yn: 1}
	sortByY(&a, &b, &c)
	if a.Xn != 10 || b.Xn != 20 {
		t.Errorf("tied-y vertices were reordered: a.Xn=%v b.Xn=%v, want 10,20 (stable)", a.Xn, b.Xn)
	}
}

// TestTransformVertexPanicsOnZeroW checks that a post-projection W of zero
// is a programmer-error precondition, not a recoverable case.
func TestTransformVertexPanicsOnZeroW(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on W == 0")
		}
	}()
	// A 4x4 all-zero matrix sends every homogeneous vertex to W=0.
	zero := linalg.NewMatrix(4, 4)
	transformVertex(mesh.Vertex{X: 1, Y: 1, Z: 1, W: 1}, zero)
}

// TestDrawMeshDeterministic runs the full public pipeline twice against
// independent targets and checks for byte-identical output.
func TestDrawMeshDeterministic(t *testing.T) {
	verts := []mesh.Vertex{
		{X: -1, Y: -1, Z: 5, W: 1, U: 0, V: 0},
		{X: 1, Y: -1, Z: 5, W: 1, U: 1, V: 0},
		{X: 0, Y: 1, Z: 5, W: 1, U: 0.5, V: 1},
	}
	m, err := mesh.New(verts)
	if err != nil {
		t.Fatalf("mesh.New: %v", err)
	}
	tex := solidTexture(t, 128, 64, 32)
	r := linalg.Identity4()
	tr := linalg.Translation(0, 0, 0)

	target1 := frame.New(16, 16)
	target1.Clear(0)
	DrawMesh(m, tex, r, tr, 60, target1)

	target2 := frame.New(16, 16)
	target2.Clear(0)
	DrawMesh(m, tex, r, tr, 60, target2)

	for i := range target1.Color {
		if target1.Color[i] != target2.Color[i] {
			t.Fatalf("non-deterministic color at %d: %#x vs %#x", i, target1.Color[i], target2.Color[i])
		}
		if target1.Depth[i] != target2.Depth[i] {
			t.Fatalf("non-deterministic depth at %d: %v vs %v", i, target1.Depth[i], target2.Depth[i])
		}
	}
}

// TestRasterizerHostAdapter exercises New/Resize/SetClearColor/Clear/DrawMesh
// through the public host-facing type.
func TestRasterizerHostAdapter(t *testing.T) {
	verts := []mesh.Vertex{
		{X: -1, Y: -1, Z: 5, W: 1},
		{X: 1, Y: -1, Z: 5, W: 1},
		{X: 0, Y: 1, Z: 5, W: 1},
	}
	m, err := mesh.New(verts)
	if err != nil {
		t.Fatalf("mesh.New: %v", err)
	}
	tex := solidTexture(t, 10, 20, 30)

	rz := New(8, 8, frame.RGBA(1, 1, 1, 255))
	rz.Clear()
	rz.DrawMesh(m, tex, linalg.Identity4(), linalg.Translation(0, 0, 0), 60)

	covered := false
	for _, c := range rz.Target().Color {
		if c != frame.RGBA(1, 1, 1, 255) {
			covered = true
			break
		}
	}
	if !covered {
		t.Error("DrawMesh left the target entirely at the clear color")
	}

	rz.Resize(4, 4)
	if len(rz.Target().Color) != 16 {
		t.Fatalf("Resize did not reallocate: len=%d", len(rz.Target().Color))
	}
	rz.SetClearColor(frame.RGBA(2, 2, 2, 255))
	rz.Clear()
	if rz.Target().Color[0] != frame.RGBA(2, 2, 2, 255) {
		t.Error("SetClearColor not honored by subsequent Clear")
	}
}
