package common

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestClamp01(t *testing.T) {
	cases := []struct {
		in, want float32
	}{
		{-1, 0},
		{-0.001, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.001, 1},
		{100, 1},
	}
	for _, c := range cases {
		if got := Clamp01(c.in); got != c.want {
			t.Errorf("Clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestProgressClamping(t *testing.T) {
	if got := Progress(-50, 100); got != 0 {
		t.Errorf("negative elapsed: got %v, want 0", got)
	}
	if got := Progress(250, 100); got != 1 {
		t.Errorf("elapsed past duration: got %v, want 1", got)
	}
	if got := Progress(50, 100); !approx(got, 0.5) {
		t.Errorf("half duration: got %v, want 0.5", got)
	}
	if got := Progress(0, 100); got != 0 {
		t.Errorf("zero elapsed: got %v, want 0", got)
	}
	if got := Progress(100, 100); got != 1 {
		t.Errorf("full duration: got %v, want 1", got)
	}
}

func TestProgressNonPositiveDuration(t *testing.T) {
	if got := Progress(0, 0); got != 1 {
		t.Errorf("zero duration: got %v, want 1", got)
	}
	if got := Progress(50, -100); got != 1 {
		t.Errorf("negative duration: got %v, want 1", got)
	}
}

func TestLerpEndpoints(t *testing.T) {
	if got := Lerp(3, 7, 0); got != 3 {
		t.Errorf("Lerp t=0: got %v, want 3", got)
	}
	if got := Lerp(3, 7, 1); got != 7 {
		t.Errorf("Lerp t=1: got %v, want 7", got)
	}
	if got := Lerp(3, 7, 0.5); !approx(got, 5) {
		t.Errorf("Lerp t=0.5: got %v, want 5", got)
	}
}

func TestRotateIdentity(t *testing.T) {
	x, y := Rotate(0.3, -0.7, 0)
	if !approx(x, 0.3) || !approx(y, -0.7) {
		t.Errorf("zero-angle rotation moved the point: got (%v, %v)", x, y)
	}
}

func TestRotatePreservesNorm(t *testing.T) {
	angles := []float32{0.1, math.Pi / 3, math.Pi, 2.5, 6}
	for _, a := range angles {
		x, y := Rotate(3, 4, a)
		norm := float32(math.Sqrt(float64(x*x + y*y)))
		if !approx(norm, 5) {
			t.Errorf("rotation by %v changed norm: got %v, want 5", a, norm)
		}
	}
}

func TestRotateComposition(t *testing.T) {
	const a, b = 0.4, 1.1
	x1, y1 := Rotate(1, 2, a)
	x1, y1 = Rotate(x1, y1, b)
	x2, y2 := Rotate(1, 2, a+b)
	if !approx(x1, x2) || !approx(y1, y2) {
		t.Errorf("sequential rotations (%v, %v) differ from combined (%v, %v)", x1, y1, x2, y2)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	x, y := Rotate(1, 0, math.Pi/2)
	if !approx(x, 0) || !approx(y, 1) {
		t.Errorf("quarter turn of (1,0): got (%v, %v), want (0, 1)", x, y)
	}
}

func TestYawAngleLinearity(t *testing.T) {
	const spin = 5000
	a := YawAngle(spin, 300)
	b := YawAngle(spin, 700)
	sum := YawAngle(spin, 1000)
	if !approx(a+b, sum) {
		t.Errorf("yaw not linear in elapsed: %v + %v != %v", a, b, sum)
	}
}

func TestYawAngleFullRevolution(t *testing.T) {
	// One spin period accumulates exactly one revolution.
	if got := YawAngle(1000, 1000); !approx(got, 2*math.Pi) {
		t.Errorf("full period: got %v, want 2π", got)
	}
}

func TestArcEndpointsExact(t *testing.T) {
	x, y := ArcInterpolate(2, 3, 8, -1, 0, DefaultArcHeight)
	if x != 2 || y != 3 {
		t.Errorf("t=0: got (%v, %v), want (2, 3)", x, y)
	}
	x, y = ArcInterpolate(2, 3, 8, -1, 1, DefaultArcHeight)
	if x != 8 || y != -1 {
		t.Errorf("t=1: got (%v, %v), want (8, -1)", x, y)
	}
}

func TestArcParabolaPeak(t *testing.T) {
	// The offset above the straight line peaks at height/4 at t = 0.5.
	const height = 0.8
	_, y := ArcInterpolate(0, 0, 1, 0, 0.5, height)
	if !approx(y, height/4) {
		t.Errorf("peak offset: got %v, want %v", y, height/4)
	}
	for _, tt := range []float32{0.1, 0.3, 0.7, 0.9} {
		_, y := ArcInterpolate(0, 0, 1, 0, tt, height)
		if y >= height/4+epsilon {
			t.Errorf("offset at t=%v exceeds peak: %v", tt, y)
		}
	}
}

func TestArcMidpointScenario(t *testing.T) {
	// Throw from (0,0) to (10,0), halfway, default height.
	x, y := ArcInterpolate(0, 0, 10, 0, 0.5, DefaultArcHeight)
	if !approx(x, 5) || !approx(y, 0.125) {
		t.Errorf("got (%v, %v), want (5, 0.125)", x, y)
	}
}

func TestToClipSpace(t *testing.T) {
	cases := []struct {
		inX, inY, wantX, wantY float32
	}{
		{0, 0, -1, 1},
		{1, 1, 1, -1},
		{0.5, 0.5, 0, 0},
		{0.25, 0.75, -0.5, -0.5},
	}
	for _, c := range cases {
		x, y := ToClipSpace(c.inX, c.inY)
		if !approx(x, c.wantX) || !approx(y, c.wantY) {
			t.Errorf("ToClipSpace(%v, %v) = (%v, %v), want (%v, %v)", c.inX, c.inY, x, y, c.wantX, c.wantY)
		}
	}
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1, 2}
	b := SliceToBytes(data)
	if len(b) != 8 {
		t.Fatalf("byte length: got %d, want 8", len(b))
	}
	if SliceToBytes([]float32(nil)) != nil {
		t.Error("empty slice should produce nil")
	}
}

func TestStructToBytes(t *testing.T) {
	v := struct{ A, B float32 }{1, 2}
	b := StructToBytes(&v)
	if len(b) != 8 {
		t.Fatalf("byte length: got %d, want 8", len(b))
	}
}
