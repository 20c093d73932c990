package item

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestThrowMidFlight(t *testing.T) {
	// Quad center thrown from (0,0) to (10,0), sampled halfway: the anchor
	// sits at x=5 with the parabolic lift of 0.5*0.5*0.5 = 0.125.
	params := GPUThrowParams{
		StartPosition: [2]float32{0, 0},
		EndPosition:   [2]float32{10, 0},
		SpinSpeed:     5000,
		Scale:         1,
		Duration:      1000,
		ElapsedTime:   500,
	}
	pos := TransformThrowVertex(params, 0, 0)
	if !approx(pos[0], 5) || !approx(pos[1], 0.125) {
		t.Errorf("mid-flight anchor: got (%v, %v), want (5, 0.125)", pos[0], pos[1])
	}
	if pos[2] != 0 || pos[3] != 1 {
		t.Errorf("z/w: got (%v, %v), want (0, 1)", pos[2], pos[3])
	}
}

func TestThrowEndpoints(t *testing.T) {
	params := GPUThrowParams{
		StartPosition: [2]float32{-0.2, 0.3},
		EndPosition:   [2]float32{0.7, -0.4},
		SpinSpeed:     5000,
		Scale:         1,
		Duration:      1000,
	}
	pos := TransformThrowVertex(params, 0, 0)
	if pos[0] != -0.2 || pos[1] != 0.3 {
		t.Errorf("start of flight: got (%v, %v), want (-0.2, 0.3)", pos[0], pos[1])
	}

	params.ElapsedTime = 1000
	pos = TransformThrowVertex(params, 0, 0)
	// Elapsed equal to duration puts the anchor exactly on the end position.
	if !approx(pos[0], 0.7) || !approx(pos[1], -0.4) {
		t.Errorf("end of flight: got (%v, %v), want (0.7, -0.4)", pos[0], pos[1])
	}
}

func TestThrowProgressClampsPastDuration(t *testing.T) {
	params := GPUThrowParams{
		EndPosition: [2]float32{1, 1},
		SpinSpeed:   5000,
		Scale:       1,
		Duration:    1000,
		ElapsedTime: 5000,
	}
	pos := TransformThrowVertex(params, 0, 0)
	if !approx(pos[0], 1) || !approx(pos[1], 1) {
		t.Errorf("overshoot should hold at end position: got (%v, %v)", pos[0], pos[1])
	}
}

func TestThrowSpinContinuesPastArrival(t *testing.T) {
	// Progress clamps but the spin angle keeps accumulating from raw
	// elapsed time, so an off-center vertex keeps moving after arrival.
	params := GPUThrowParams{
		NormTextureSize: [2]float32{1, 1},
		SpinSpeed:       4000,
		Scale:           1,
		Duration:        1000,
		ElapsedTime:     1000, // quarter revolution
	}
	pos := TransformThrowVertex(params, 1, 0)
	if !approx(pos[0], 0) || !approx(pos[1], 1) {
		t.Errorf("quarter spin of (1,0): got (%v, %v), want (0, 1)", pos[0], pos[1])
	}
}

func TestThrowScaleAppliedAfterRotation(t *testing.T) {
	// Half a revolution flips the vertex; the non-uniform size then scales
	// the rotated coordinates, not the original ones.
	params := GPUThrowParams{
		NormTextureSize: [2]float32{0.5, 0.25},
		SpinSpeed:       2000,
		Scale:           2,
		Duration:        1000,
		ElapsedTime:     1000, // half revolution
	}
	pos := TransformThrowVertex(params, 0.5, 0.5)
	// rotate(0.5, 0.5, π) = (-0.5, -0.5); size = (1, 0.5)
	if !approx(pos[0], -0.5) || !approx(pos[1], -0.25) {
		t.Errorf("got (%v, %v), want (-0.5, -0.25)", pos[0], pos[1])
	}
}

func TestPlacementScenario(t *testing.T) {
	// Fixed quad: size (2,2), position (1,1), no rotation. The local corner
	// (1,1) lands at (3,3).
	params := GPUPlacementParams{
		QuadSize: [2]float32{2, 2},
		Position: [2]float32{1, 1},
		Yaw:      0,
	}
	pos := TransformPlacementVertex(params, 1, 1)
	if pos != [4]float32{3, 3, 0, 1} {
		t.Errorf("got %v, want [3 3 0 1]", pos)
	}
}

func TestPlacementYaw(t *testing.T) {
	params := GPUPlacementParams{
		QuadSize: [2]float32{1, 1},
		Position: [2]float32{0, 0},
		Yaw:      math.Pi / 2,
	}
	pos := TransformPlacementVertex(params, 1, 0)
	if !approx(pos[0], 0) || !approx(pos[1], 1) {
		t.Errorf("quarter-turn placement of (1,0): got (%v, %v), want (0, 1)", pos[0], pos[1])
	}
}

func TestPlacementIgnoresTime(t *testing.T) {
	params := GPUPlacementParams{
		QuadSize: [2]float32{1, 1},
		Position: [2]float32{0.5, -0.5},
		Yaw:      0.3,
	}
	a := TransformPlacementVertex(params, 0.5, 0.5)
	b := TransformPlacementVertex(params, 0.5, 0.5)
	if a != b {
		t.Errorf("placement transform is not deterministic: %v vs %v", a, b)
	}
}
