// Package texture provides a read-only 2D byte raster sampled by the
// rasterizer during triangle fill.
package texture

import "fmt"

// ChannelOrder names the byte layout of one pixel in Texture.Pixels.
// The authoritative order depends on the loader that decoded the asset;
// Texture carries it explicitly so Sample never has to guess.
type ChannelOrder int

const (
	OrderBGR  ChannelOrder = iota // 3 bytes per pixel: B, G, R
	OrderBGRA                     // 4 bytes per pixel: B, G, R, A
)

// BytesPerPixel returns 3 for OrderBGR and 4 for OrderBGRA.
func (o ChannelOrder) BytesPerPixel() int {
	if o == OrderBGRA {
		return 4
	}
	return 3
}

// Texture is a read-only 2D raster with no padding between rows: row
// stride equals Width*BytesPerPixel. Coordinate origin is top-left;
// (u,v) = (0,0) samples pixel (0,0).
type Texture struct {
	Width, Height uint32
	Order         ChannelOrder
	Pixels        []byte
}

// New validates and wraps a decoded pixel raster.
func New(width, height uint32, order ChannelOrder, pixels []byte) (*Texture, error) {
	want := int(width) * int(height) * order.BytesPerPixel()
	if len(pixels) != want {
		return nil, fmt.Errorf("texture: pixel buffer length %d, want %d (%dx%d x %d bpp)",
			len(pixels), want, width, height, order.BytesPerPixel())
	}
	return &Texture{Width: width, Height: height, Order: order, Pixels: pixels}, nil
}

// Sample performs nearest-neighbor sampling with wrap-around: ui =
// floor(u*W), vi = floor(v*H); ui/vi wrap modulo W/H when they overflow.
// Negative UVs are not handled; the rasterizer only ever samples inside
// a triangle's UV barycentric hull with UVs in [0,1]. Alpha is not
// returned; callers always force alpha to 255 when packing the sample.
func (t *Texture) Sample(u, v float32) (r, g, b byte) {
	ui := int(u * float32(t.Width))
	vi := int(v * float32(t.Height))
	if ui >= int(t.Width) {
		ui %= int(t.Width)
	}
	if vi >= int(t.Height) {
		vi %= int(t.Height)
	}

	bpp := t.Order.BytesPerPixel()
	idx := (vi*int(t.Width) + ui) * bpp
	// Pixels is stored B, G, R[, A] per ChannelOrder; return channels as R, G, B.
	return t.Pixels[idx+2], t.Pixels[idx+1], t.Pixels[idx]
}
