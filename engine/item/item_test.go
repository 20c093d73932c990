package item

import (
	"strings"
	"testing"

	"github.com/overlayforge/sling/common"
)

func testTexture() *common.ItemTexture {
	return &common.ItemTexture{Name: "test", Data: []byte{1}, Width: 128, Height: 64}
}

func TestNewThrowDefaults(t *testing.T) {
	i, err := NewThrow(WithTexture(testTexture()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i.Kind() != KindThrow {
		t.Error("kind should be KindThrow")
	}
	if i.SpinSpeed() != DefaultSpinSpeed {
		t.Errorf("spin speed: got %v, want %v", i.SpinSpeed(), float32(DefaultSpinSpeed))
	}
	if i.Duration() != DefaultDuration {
		t.Errorf("duration: got %v, want %v", i.Duration(), float32(DefaultDuration))
	}
	if i.Scale() != DefaultScale {
		t.Errorf("scale: got %v, want %v", i.Scale(), float32(DefaultScale))
	}
}

func TestNewThrowRejectsZeroSpinSpeed(t *testing.T) {
	_, err := NewThrow(WithTexture(testTexture()), WithSpinSpeed(0))
	if err == nil {
		t.Fatal("expected error for zero spin speed")
	}
	if !strings.Contains(err.Error(), "spin speed") {
		t.Errorf("error should name spin speed: %v", err)
	}
}

func TestNewThrowRejectsBadDuration(t *testing.T) {
	for _, d := range []float32{0, -100} {
		if _, err := NewThrow(WithTexture(testTexture()), WithDuration(d)); err == nil {
			t.Errorf("expected error for duration %v", d)
		}
	}
}

func TestNewThrowRejectsMissingTexture(t *testing.T) {
	if _, err := NewThrow(); err == nil {
		t.Fatal("expected error for missing texture")
	}
}

func TestUpdateAndDone(t *testing.T) {
	i, err := NewThrow(WithTexture(testTexture()), WithDuration(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i.Done() {
		t.Error("fresh throw should not be done")
	}
	i.Update(60)
	if i.Done() {
		t.Error("mid-flight throw should not be done")
	}
	if got := i.Progress(); got != 0.6 {
		t.Errorf("progress: got %v, want 0.6", got)
	}
	i.Update(60)
	if !i.Done() {
		t.Error("throw past duration should be done")
	}
	if got := i.Progress(); got != 1 {
		t.Errorf("progress past duration: got %v, want 1", got)
	}
}

func TestPlacementNeverDone(t *testing.T) {
	i, err := NewPlacement(WithTexture(testTexture()), WithPlacement(320, 240, 48, 48, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i.Update(1e9)
	if i.Done() {
		t.Error("placement items never finish")
	}
	if i.Elapsed() != 0 {
		t.Error("placement items do not accumulate time")
	}
}

func TestThrowParamsNormalizesTexture(t *testing.T) {
	i, err := NewThrow(
		WithTexture(testTexture()),
		WithArc(0, 0, 1280, 640),
		WithScale(2),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := i.ThrowParams(1280, 640)
	if p.NormTextureSize != [2]float32{0.1, 0.1} {
		t.Errorf("normalized size: got %v, want [0.1 0.1]", p.NormTextureSize)
	}
	// Pixel anchors become clip space.
	if p.StartPosition != [2]float32{-1, 1} {
		t.Errorf("start: got %v, want [-1 1]", p.StartPosition)
	}
	if p.EndPosition != [2]float32{1, -1} {
		t.Errorf("end: got %v, want [1 -1]", p.EndPosition)
	}
	if p.Scale != 2 {
		t.Errorf("scale: got %v, want 2", p.Scale)
	}
}

func TestPlacementParamsClipSpace(t *testing.T) {
	i, err := NewPlacement(WithTexture(testTexture()), WithPlacement(640, 320, 160, 64, 0.7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := i.PlacementParams(1280, 640)
	if p.Position != [2]float32{0, 0} {
		t.Errorf("centered placement: got %v, want [0 0]", p.Position)
	}
	if p.QuadSize != [2]float32{0.25, 0.2} {
		t.Errorf("clip size: got %v, want [0.25 0.2]", p.QuadSize)
	}
	if p.Yaw != 0.7 {
		t.Errorf("yaw: got %v, want 0.7", p.Yaw)
	}
}

// Anchors anywhere on a 1280x720 surface must map into [-1, 1] clip space,
// including cursor-driven positions near the edges.
func TestPixelAnchorsStayInClipSpace(t *testing.T) {
	inClip := func(t *testing.T, name string, v [2]float32) {
		t.Helper()
		for axis, c := range v {
			if c < -1 || c > 1 {
				t.Errorf("%s[%d] = %v, outside clip space", name, axis, c)
			}
		}
	}

	throw, err := NewThrow(WithTexture(testTexture()), WithArc(640, 720, 1279, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tp := throw.ThrowParams(1280, 720)
	inClip(t, "start", tp.StartPosition)
	inClip(t, "end", tp.EndPosition)
	if tp.StartPosition != [2]float32{0, -1} {
		t.Errorf("bottom-center start: got %v, want [0 -1]", tp.StartPosition)
	}

	place, err := NewPlacement(WithTexture(testTexture()), WithPlacement(1240, 680, 48, 48, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pp := place.PlacementParams(1280, 720)
	inClip(t, "position", pp.Position)
	inClip(t, "size", pp.QuadSize)
}

func TestParamsZeroScreenDimensions(t *testing.T) {
	i, err := NewPlacement(WithTexture(testTexture()), WithPlacement(100, 100, 32, 32, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := i.PlacementParams(0, 720); got != (GPUPlacementParams{}) {
		t.Errorf("zero width: got %+v, want zero value", got)
	}
	th, err := NewThrow(WithTexture(testTexture()), WithArc(0, 0, 100, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := th.ThrowParams(1280, 0); got != (GPUThrowParams{}) {
		t.Errorf("zero height: got %+v, want zero value", got)
	}
}

func TestPipelineWiring(t *testing.T) {
	i, err := NewThrow(WithTexture(testTexture()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i.SetPipelineKey("throw")
	if i.PipelineKey() != "throw" {
		t.Errorf("pipeline key: got %q, want %q", i.PipelineKey(), "throw")
	}
}
