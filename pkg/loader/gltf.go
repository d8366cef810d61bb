// Package loader decodes on-disk assets (glTF/GLB meshes, PNG/JPEG and
// embedded glTF textures) into the in-memory mesh.Mesh and texture.Texture
// types the rasterizer consumes.
package loader

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/soft3d/trirast/pkg/mesh"
)

// LoadMesh reads a glTF or GLB file and flattens every triangle primitive in
// every mesh in the document into a single mesh.Mesh. V is passed through as
// stored in the file here and flipped exactly once by mesh.NewFromRawUVs.
func LoadMesh(path string) (*mesh.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %q: %w", path, err)
	}

	var vertices []mesh.Vertex
	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}
			vs, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("loader: mesh %q: %w", m.Name, err)
			}
			vertices = append(vertices, vs...)
		}
	}

	return mesh.NewFromRawUVs(vertices)
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]mesh.Vertex, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := readVec3Accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var uvs [][2]float32
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = readVec2Accessor(doc, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	raw := make([]mesh.Vertex, len(positions))
	for i, p := range positions {
		v := mesh.Vertex{X: p[0], Y: p[1], Z: p[2], W: 1}
		if i < len(uvs) {
			v.U, v.V = uvs[i][0], uvs[i][1]
		}
		raw[i] = v
	}

	if prim.Indices == nil {
		return raw, nil
	}

	indices, err := readIndices(doc, *prim.Indices)
	if err != nil {
		return nil, fmt.Errorf("read indices: %w", err)
	}
	out := make([]mesh.Vertex, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(raw) {
			return nil, fmt.Errorf("index %d out of range [0,%d)", idx, len(raw))
		}
		out[i] = raw[idx]
	}
	return out, nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([][3]float32, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	floats, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC3")
	}
	return floats, nil
}

func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([][2]float32, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}
	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	floats, ok := data.([][2]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC2")
	}
	return floats, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []uint8:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	case []uint16:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	case []uint32:
		out := make([]int, len(v))
		for i, x := range v {
			out[i] = int(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected index component type: %T", data)
	}
}

func readAccessorData(doc *gltf.Document, accessor *gltf.Accessor) (any, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.URI != "" {
		return nil, fmt.Errorf("external buffers not supported")
	}
	bufData := buffer.Data
	if bufData == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	count := accessor.Count

	switch accessor.Type {
	case gltf.AccessorVec3:
		if stride == 0 {
			stride = 12
		}
		out := make([][3]float32, count)
		for i := 0; i < count; i++ {
			offset := start + i*stride
			for j := 0; j < 3; j++ {
				out[i][j] = readFloat32LE(bufData[offset+j*4:])
			}
		}
		return out, nil
	case gltf.AccessorVec2:
		if stride == 0 {
			stride = 8
		}
		out := make([][2]float32, count)
		for i := 0; i < count; i++ {
			offset := start + i*stride
			for j := 0; j < 2; j++ {
				out[i][j] = readFloat32LE(bufData[offset+j*4:])
			}
		}
		return out, nil
	case gltf.AccessorScalar:
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			if stride == 0 {
				stride = 1
			}
			out := make([]uint8, count)
			for i := 0; i < count; i++ {
				out[i] = bufData[start+i*stride]
			}
			return out, nil
		case gltf.ComponentUshort:
			if stride == 0 {
				stride = 2
			}
			out := make([]uint16, count)
			for i := 0; i < count; i++ {
				offset := start + i*stride
				out[i] = uint16(bufData[offset]) | uint16(bufData[offset+1])<<8
			}
			return out, nil
		case gltf.ComponentUint:
			if stride == 0 {
				stride = 4
			}
			out := make([]uint32, count)
			for i := 0; i < count; i++ {
				offset := start + i*stride
				out[i] = uint32(bufData[offset]) | uint32(bufData[offset+1])<<8 |
					uint32(bufData[offset+2])<<16 | uint32(bufData[offset+3])<<24
			}
			return out, nil
		}
	}

	return nil, fmt.Errorf("unsupported accessor type: %v / %v", accessor.Type, accessor.ComponentType)
}

func readFloat32LE(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
