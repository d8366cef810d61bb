package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/qmuntal/gltf"

	"github.com/soft3d/trirast/pkg/texture"
)

// LoadTexture decodes a PNG or JPEG file from disk into a BGRA texture.Texture.
func LoadTexture(path string) (*texture.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loader: decode texture %q: %w", path, err)
	}
	return fromImage(img)
}

// LoadTextureFromGLTF opens a glTF/GLB document and decodes its first
// buffer-view-backed embedded image that decodes successfully into a
// texture; images that cannot be read or decoded are skipped. External
// (URI) images are not fetched.
func LoadTextureFromGLTF(path string) (*texture.Texture, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %q: %w", path, err)
	}

	for _, img := range doc.Images {
		data, err := imageBytes(doc, img)
		if err != nil || len(data) == 0 {
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		return fromImage(decoded)
	}
	return nil, fmt.Errorf("loader: %q has no decodable embedded image", path)
}

func imageBytes(doc *gltf.Document, img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data == nil {
			return nil, fmt.Errorf("image buffer has no data")
		}
		start := bv.ByteOffset
		end := start + bv.ByteLength
		return buf.Data[start:end], nil
	}
	return nil, fmt.Errorf("image has no buffer view (external URIs are not fetched)")
}

// fromImage converts a decoded image.Image into a BGRA texture.Texture.
func fromImage(img image.Image) (*texture.Texture, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, w*h*4)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			pixels[i] = byte(b >> 8)
			pixels[i+1] = byte(g >> 8)
			pixels[i+2] = byte(r >> 8)
			pixels[i+3] = byte(a >> 8)
			i += 4
		}
	}

	return texture.New(uint32(w), uint32(h), texture.OrderBGRA, pixels)
}
