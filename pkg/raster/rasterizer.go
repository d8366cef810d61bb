package raster

import (
	"github.com/soft3d/trirast/pkg/frame"
	"github.com/soft3d/trirast/pkg/linalg"
	"github.com/soft3d/trirast/pkg/mesh"
	"github.com/soft3d/trirast/pkg/texture"
)

// Rasterizer is the host-facing adapter: it owns a frame.Target and a
// clear color and exposes the operations a windowing front end drives
// once per frame (new/resize/set-clear-color/clear/draw-mesh). It holds no
// lock and is not safe for concurrent use: Resize must not run while
// DrawMesh or Clear is in progress.
type Rasterizer struct {
	target     *frame.Target
	clearColor frame.Color
}

// New builds a Rasterizer sized to width x height with the given clear color.
func New(width, height int, clearColor frame.Color) *Rasterizer {
	return &Rasterizer{
		target:     frame.New(width, height),
		clearColor: clearColor,
	}
}

// Resize reallocates the underlying frame.Target. Contents are undefined
// until the next Clear.
func (r *Rasterizer) Resize(width, height int) {
	r.target.Resize(width, height)
}

// SetClearColor changes the color used by the next Clear.
func (r *Rasterizer) SetClearColor(c frame.Color) {
	r.clearColor = c
}

// Clear resets the color buffer to the configured clear color and the depth
// buffer to frame.NoCoverage.
func (r *Rasterizer) Clear() {
	r.target.Clear(r.clearColor)
}

// DrawMesh transforms and rasterizes m into the current frame using the
// given rotation matrix r, translation matrix t, and vertical field of view
// in degrees.
func (rz *Rasterizer) DrawMesh(m *mesh.Mesh, tex *texture.Texture, r, t linalg.Matrix, fovDeg float32) {
	DrawMesh(m, tex, r, t, fovDeg, rz.target)
}

// Target exposes the underlying frame buffer for presentation (e.g. a
// terminal or window back end reading pixel colors each frame).
func (r *Rasterizer) Target() *frame.Target {
	return r.target
}
