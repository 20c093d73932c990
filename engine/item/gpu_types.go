package item

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUThrowParamsSource is the canonical WGSL definition of the ThrowParams uniform struct.
// Matches GPUThrowParams layout exactly (48 bytes, WGSL uniform aligned).
//
//go:embed assets/throw_params.wgsl
var GPUThrowParamsSource string

// GPUThrowParams is the GPU-aligned representation of the per-throw uniform buffer.
// Matches the WGSL ThrowParams struct layout exactly (see GPUThrowParamsSource).
// Size: 48 bytes (40 bytes of data padded to a 16-byte multiple).
type GPUThrowParams struct {
	NormTextureSize [2]float32 // offset  0: texture size normalized to the screen (vec2<f32>)
	StartPosition   [2]float32 // offset  8: clip-space throw origin (vec2<f32>)
	EndPosition     [2]float32 // offset 16: clip-space throw target (vec2<f32>)
	SpinSpeed       float32    // offset 24: time for one full revolution
	Scale           float32    // offset 28: size multiplier applied to the texture size
	Duration        float32    // offset 32: total flight time
	ElapsedTime     float32    // offset 36: time since the throw started
	_pad            [2]float32 // offset 40: padding to 48 bytes
}

// Size returns the size of the GPUThrowParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUThrowParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUThrowParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUThrowParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.NormTextureSize[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.NormTextureSize[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.StartPosition[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.StartPosition[1]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.EndPosition[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.EndPosition[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.SpinSpeed))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Scale))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.Duration))
	binary.LittleEndian.PutUint32(buf[36:40], math.Float32bits(g.ElapsedTime))
	binary.LittleEndian.PutUint32(buf[40:44], 0) // _pad
	binary.LittleEndian.PutUint32(buf[44:48], 0) // _pad
	return buf
}

// GPUPlacementParamsSource is the canonical WGSL definition of the PlacementParams uniform struct.
// Matches GPUPlacementParams layout exactly (32 bytes, WGSL uniform aligned).
//
//go:embed assets/placement_params.wgsl
var GPUPlacementParamsSource string

// GPUPlacementParams is the GPU-aligned representation of the uniform buffer for
// statically placed items. Matches the WGSL PlacementParams struct layout exactly
// (see GPUPlacementParamsSource).
// Size: 32 bytes (20 bytes of data padded to a 16-byte multiple).
type GPUPlacementParams struct {
	QuadSize [2]float32 // offset  0: clip-space quad size (vec2<f32>)
	Position [2]float32 // offset  8: clip-space quad center (vec2<f32>)
	Yaw      float32    // offset 16: rotation in radians
	_pad     [3]float32 // offset 20: padding to 32 bytes
}

// Size returns the size of the GPUPlacementParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUPlacementParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPlacementParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUPlacementParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.QuadSize[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.QuadSize[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Yaw))
	binary.LittleEndian.PutUint32(buf[20:24], 0) // _pad
	binary.LittleEndian.PutUint32(buf[24:28], 0) // _pad
	binary.LittleEndian.PutUint32(buf[28:32], 0) // _pad
	return buf
}

// GPUSpriteVertexSource is the canonical WGSL definition of the SpriteVertex input struct.
// Matches GPUSpriteVertex layout exactly (16 bytes).
//
//go:embed assets/sprite_vertex.wgsl
var GPUSpriteVertexSource string

// RotateFunctionSource is the shared WGSL 2D rotation helper injected into the
// vertex shaders. The WGSL body mirrors common.Rotate.
//
//go:embed assets/rotate.wgsl
var RotateFunctionSource string

// GPUSpriteVertex is the GPU-aligned representation of a single quad vertex.
// Matches the WGSL SpriteVertex struct layout exactly (see GPUSpriteVertexSource).
// Size: 16 bytes, no padding required.
type GPUSpriteVertex struct {
	Position [2]float32 // offset 0: vertex position in quad-local space (8 bytes)
	TexCoord [2]float32 // offset 8: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUSpriteVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSpriteVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpriteVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUSpriteVertex) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[1]))
	return buf
}

// QuadVertices returns the four vertices of the unit item quad, centered on the
// origin and spanning -0.5..0.5 in both axes. Texture coordinates map the full
// image with V increasing downward.
//
// Returns:
//   - []GPUSpriteVertex: the quad vertices in counter-clockwise order
func QuadVertices() []GPUSpriteVertex {
	return []GPUSpriteVertex{
		{Position: [2]float32{-0.5, 0.5}, TexCoord: [2]float32{0, 0}},
		{Position: [2]float32{-0.5, -0.5}, TexCoord: [2]float32{0, 1}},
		{Position: [2]float32{0.5, -0.5}, TexCoord: [2]float32{1, 1}},
		{Position: [2]float32{0.5, 0.5}, TexCoord: [2]float32{1, 0}},
	}
}

// QuadIndices returns the six indices forming the item quad's two triangles.
//
// Returns:
//   - []uint32: index data for an indexed draw of the quad
func QuadIndices() []uint32 {
	return []uint32{0, 1, 2, 0, 2, 3}
}

// MarshalQuad serializes the unit quad's vertex data into a contiguous byte
// buffer for GPU upload.
//
// Returns:
//   - []byte: the serialized vertex buffer (4 vertices × 16 bytes)
func MarshalQuad() []byte {
	verts := QuadVertices()
	buf := make([]byte, 0, len(verts)*16)
	for i := range verts {
		buf = append(buf, verts[i].Marshal()...)
	}
	return buf
}
