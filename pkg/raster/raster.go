// Package raster implements the per-frame triangle transform and scanline
// rasterization pipeline: composite MVP, perspective divide, screen-space
// y-sort, two-half DDA scanline fill, barycentric interpolation, depth
// test, and nearest-neighbor texture sampling. It deliberately does not
// perform perspective-correct interpolation, back-face culling, or frustum
// clipping beyond the viewport rectangle.
package raster

import (
	"math"

	"github.com/soft3d/trirast/pkg/frame"
	"github.com/soft3d/trirast/pkg/linalg"
	"github.com/soft3d/trirast/pkg/mesh"
	"github.com/soft3d/trirast/pkg/texture"
)

const (
	defaultNear = float32(0.01)
	defaultFar  = float32(100.0)
)

// screenVertex holds one triangle corner after the MVP transform and
// perspective divide: Xn, Yn are normalized to [0,1] (not yet pixel-scaled;
// the pixel scale is reapplied at every use site rather than caching a
// pixel-space copy).
type screenVertex struct {
	Xn, Yn, Z float32
	U, V      float32
}

// transformVertex multiplies M by the vertex as a 4x1 column vector,
// perspective-divides, and
// maps X/Y into [0,1]. It panics if W == 0 post-transform, a
// programmer-error precondition rather than a recoverable condition.
func transformVertex(v mesh.Vertex, m linalg.Matrix) screenVertex {
	col := linalg.NewVector(v.X, v.Y, v.Z, v.W)
	out := linalg.Mul(m, col)
	X, Y, Z, W := out.At(0, 0), out.At(1, 0), out.At(2, 0), out.At(3, 0)
	if W == 0 {
		panic("raster: transformVertex: W is zero after projection")
	}
	return screenVertex{
		Xn: (X/W + 1) / 2,
		Yn: (Y/W + 1) / 2,
		Z:  Z / W,
		U:  v.U,
		V:  v.V,
	}
}

// sortByY applies three conditional swaps so that
// v1.Yn <= v2.Yn <= v3.Yn.
func sortByY(v1, v2, v3 *screenVertex) {
	if v3.Yn < v1.Yn {
		*v3, *v1 = *v1, *v3
	}
	if v2.Yn < v1.Yn {
		*v2, *v1 = *v1, *v2
	}
	if v3.Yn < v2.Yn {
		*v3, *v2 = *v2, *v3
	}
}

// DrawMesh transforms, sorts, and scanline-fills every triangle in m against
// target using texture tex. near/far are fixed at 0.01/100.0.
func DrawMesh(m *mesh.Mesh, tex *texture.Texture, r, t linalg.Matrix, fovDeg float32, target *frame.Target) {
	proj := linalg.Projection(uint32(target.Width), uint32(target.Height), defaultNear, defaultFar, fovDeg)
	mvp := linalg.Mul(proj, linalg.Mul(t, r))

	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		v1 := transformVertex(a, mvp)
		v2 := transformVertex(b, mvp)
		v3 := transformVertex(c, mvp)
		sortByY(&v1, &v2, &v3)
		rasterizeTriangle(v1, v2, v3, tex, target)
	}
}

// rasterizeTriangle performs the two-half DDA scanline fill: the triangle
// is split at its middle vertex and each half is walked with linear
// edge-slope interpolation.
func rasterizeTriangle(v1, v2, v3 screenVertex, tex *texture.Texture, target *frame.Target) {
	w := float32(target.Width)
	h := float32(target.Height)

	denom := (v2.Xn*w-v1.Xn*w)*(v3.Yn*h-v1.Yn*h) - (v3.Xn*w-v1.Xn*w)*(v2.Yn*h-v1.Yn*h)
	if denom == 0 {
		denom = math.MaxFloat32
	}

	x1 := v1.Xn * w
	y1 := int64(v1.Yn * h)
	x2 := v2.Xn * w
	y2 := int64(v2.Yn * h)
	x3 := v3.Xn * w
	y3 := int64(v3.Yn * h)

	height := int64(target.Height)
	if y1 >= height || y3 < 0 {
		return
	}

	dyAB := y2 - y1
	dyBC := y3 - y2
	dyAC := y3 - y1

	// Degenerate triangle: zero vertical extent on both halves draws no
	// pixels, and would otherwise divide by zero below.
	if dyAB == 0 && dyBC == 0 {
		return
	}

	if dyAB > 0 {
		dxAB := (x2 - x1) / float32(dyAB)
		dxAC := (x3 - x1) / float32(dyAC)

		for i := int64(0); i < dyAB; i++ {
			y := y1 + i
			if y < 0 {
				continue
			}
			if y >= height {
				break
			}
			xStart := int64(math.Floor(float64(x1 + dxAB*float32(i))))
			xEnd := int64(math.Floor(float64(x1 + dxAC*float32(i))))
			drawLine(v1, v2, v3, denom, xStart, xEnd, y, tex, target)
		}
	}

	mx := x1 + float32(dyAB)*(x3-x1)/float32(dyAC)
	dxBC := (x3 - x2) / float32(dyBC)
	dxEC := (x3 - mx) / float32(dyBC)

	for i := int64(0); i <= dyBC; i++ {
		y := y2 + i
		if y < 0 {
			continue
		}
		if y >= height {
			break
		}
		xStart := int64(math.Floor(float64(x2 + dxBC*float32(i))))
		xEnd := int64(math.Floor(float64(mx + dxEC*float32(i))))
		drawLine(v1, v2, v3, denom, xStart, xEnd, y, tex, target)
	}
}

// drawLine swaps so xStart<=xEnd, clamps to [0, W-1], and fills each
// integer x inclusive on both ends.
func drawLine(v1, v2, v3 screenVertex, denom float32, xStart, xEnd, y int64, tex *texture.Texture, target *frame.Target) {
	if xEnd < xStart {
		xStart, xEnd = xEnd, xStart
	}
	if xStart < 0 {
		xStart = 0
	}
	if maxX := int64(target.Width) - 1; xEnd > maxX {
		xEnd = maxX
	}
	for x := xStart; x <= xEnd; x++ {
		drawPixel(x, y, v1, v2, v3, denom, tex, target)
	}
}

// drawPixel computes barycentric coordinates in screen-pixel space, runs
// the depth test, linearly (non-perspective-correctly) interpolates
// z/u/v, samples the texture with nearest-neighbor filtering, and packs
// the result as a BGRA word.
func drawPixel(x, y int64, v1, v2, v3 screenVertex, denom float32, tex *texture.Texture, target *frame.Target) {
	w := float32(target.Width)
	h := float32(target.Height)
	px := float32(x)
	py := float32(y)

	alpha := ((v2.Xn*w-px)*(v3.Yn*h-py) - (v3.Xn*w-px)*(v2.Yn*h-py)) / denom
	beta := ((v3.Xn*w-px)*(v1.Yn*h-py) - (v1.Xn*w-px)*(v3.Yn*h-py)) / denom
	gamma := 1 - alpha - beta

	z := v1.Z*alpha + v2.Z*beta + v3.Z*gamma

	if z >= target.DepthAt(int(x), int(y)) {
		return
	}

	u := v1.U*alpha + v2.U*beta + v3.U*gamma
	v := v1.V*alpha + v2.V*beta + v3.V*gamma

	r, g, b := tex.Sample(u, v)
	idx := int(y)*target.Width + int(x)
	target.Color[idx] = frame.RGBA(r, g, b, 255)
	target.Depth[idx] = z
}
