package item

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"
)

func float32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestGPUThrowParamsLayout(t *testing.T) {
	var p GPUThrowParams
	if p.Size() != 48 {
		t.Fatalf("struct size: got %d, want 48", p.Size())
	}
	offsets := map[string]uintptr{
		"NormTextureSize": unsafe.Offsetof(p.NormTextureSize),
		"StartPosition":   unsafe.Offsetof(p.StartPosition),
		"EndPosition":     unsafe.Offsetof(p.EndPosition),
		"SpinSpeed":       unsafe.Offsetof(p.SpinSpeed),
		"Scale":           unsafe.Offsetof(p.Scale),
		"Duration":        unsafe.Offsetof(p.Duration),
		"ElapsedTime":     unsafe.Offsetof(p.ElapsedTime),
	}
	want := map[string]uintptr{
		"NormTextureSize": 0,
		"StartPosition":   8,
		"EndPosition":     16,
		"SpinSpeed":       24,
		"Scale":           28,
		"Duration":        32,
		"ElapsedTime":     36,
	}
	for name, w := range want {
		if offsets[name] != w {
			t.Errorf("%s offset: got %d, want %d", name, offsets[name], w)
		}
	}
}

func TestGPUThrowParamsMarshal(t *testing.T) {
	p := GPUThrowParams{
		NormTextureSize: [2]float32{0.1, 0.2},
		StartPosition:   [2]float32{-1, 1},
		EndPosition:     [2]float32{1, -1},
		SpinSpeed:       5000,
		Scale:           2,
		Duration:        1000,
		ElapsedTime:     250,
	}
	buf := p.Marshal()
	if len(buf) != 48 {
		t.Fatalf("marshal length: got %d, want 48", len(buf))
	}
	checks := []struct {
		offset int
		want   float32
	}{
		{0, 0.1}, {4, 0.2},
		{8, -1}, {12, 1},
		{16, 1}, {20, -1},
		{24, 5000}, {28, 2}, {32, 1000}, {36, 250},
		{40, 0}, {44, 0},
	}
	for _, c := range checks {
		if got := float32At(buf, c.offset); got != c.want {
			t.Errorf("offset %d: got %v, want %v", c.offset, got, c.want)
		}
	}
}

func TestGPUPlacementParamsLayout(t *testing.T) {
	var p GPUPlacementParams
	if p.Size() != 32 {
		t.Fatalf("struct size: got %d, want 32", p.Size())
	}
	if off := unsafe.Offsetof(p.QuadSize); off != 0 {
		t.Errorf("QuadSize offset: got %d, want 0", off)
	}
	if off := unsafe.Offsetof(p.Position); off != 8 {
		t.Errorf("Position offset: got %d, want 8", off)
	}
	if off := unsafe.Offsetof(p.Yaw); off != 16 {
		t.Errorf("Yaw offset: got %d, want 16", off)
	}
}

func TestGPUPlacementParamsMarshal(t *testing.T) {
	p := GPUPlacementParams{
		QuadSize: [2]float32{0.4, 0.3},
		Position: [2]float32{0.5, -0.5},
		Yaw:      1.5,
	}
	buf := p.Marshal()
	if len(buf) != 32 {
		t.Fatalf("marshal length: got %d, want 32", len(buf))
	}
	checks := []struct {
		offset int
		want   float32
	}{
		{0, 0.4}, {4, 0.3}, {8, 0.5}, {12, -0.5}, {16, 1.5}, {20, 0}, {24, 0}, {28, 0},
	}
	for _, c := range checks {
		if got := float32At(buf, c.offset); got != c.want {
			t.Errorf("offset %d: got %v, want %v", c.offset, got, c.want)
		}
	}
}

func TestQuadGeometry(t *testing.T) {
	verts := QuadVertices()
	if len(verts) != 4 {
		t.Fatalf("vertex count: got %d, want 4", len(verts))
	}
	idx := QuadIndices()
	if len(idx) != 6 {
		t.Fatalf("index count: got %d, want 6", len(idx))
	}
	for _, i := range idx {
		if int(i) >= len(verts) {
			t.Errorf("index %d out of range", i)
		}
	}
	// All corners sit on the unit quad boundary.
	for _, v := range verts {
		if v.Position[0] != 0.5 && v.Position[0] != -0.5 {
			t.Errorf("x corner out of unit quad: %v", v.Position)
		}
		if v.Position[1] != 0.5 && v.Position[1] != -0.5 {
			t.Errorf("y corner out of unit quad: %v", v.Position)
		}
	}
}

func TestMarshalQuad(t *testing.T) {
	buf := MarshalQuad()
	if len(buf) != 64 {
		t.Fatalf("quad buffer length: got %d, want 64", len(buf))
	}
	// First vertex round-trips.
	v := QuadVertices()[0]
	if got := float32At(buf, 0); got != v.Position[0] {
		t.Errorf("first vertex x: got %v, want %v", got, v.Position[0])
	}
	if got := float32At(buf, 12); got != v.TexCoord[1] {
		t.Errorf("first vertex v: got %v, want %v", got, v.TexCoord[1])
	}
}
