package common

import (
	"math"
	"unsafe"
)

// DefaultArcHeight is the peak offset of a thrown item's flight arc, expressed
// as a fraction of the screen height. All throw pipelines use this value.
const DefaultArcHeight = 0.5

// Clamp01 clamps a value to the [0, 1] range.
//
// Parameters:
//   - v: value to clamp
//
// Returns:
//   - float32: v limited to [0, 1]
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Progress computes normalized animation progress, clamped to [0, 1].
// A non-positive duration reports the animation as finished.
//
// Parameters:
//   - elapsed: time since the animation started
//   - duration: total animation length, in the same unit as elapsed
//
// Returns:
//   - float32: elapsed/duration clamped to [0, 1], or 1 when duration <= 0
func Progress(elapsed, duration float32) float32 {
	if duration <= 0 {
		return 1
	}
	return Clamp01(elapsed / duration)
}

// Lerp linearly interpolates between a and b.
//
// Parameters:
//   - a: start value, returned when t = 0
//   - b: end value, returned when t = 1
//   - t: interpolation factor
//
// Returns:
//   - float32: a + (b-a)*t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Rotate rotates a 2D point counter-clockwise around the origin. This is the
// single rotation primitive shared by the throw and placement transforms.
//
// Parameters:
//   - x, y: point to rotate
//   - angle: rotation angle in radians
//
// Returns:
//   - float32, float32: the rotated point
func Rotate(x, y, angle float32) (float32, float32) {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	return x*c - y*s, x*s + y*c
}

// YawAngle derives a spin angle from elapsed time. Spin speed is the period
// of one full revolution: the angle is (2π / spinSpeed) * elapsed, unbounded.
// A spin speed of zero is rejected at the item layer.
//
// Parameters:
//   - spinSpeed: time for one full revolution, in the same unit as elapsed
//   - elapsed: time since the animation started
//
// Returns:
//   - float32: accumulated rotation in radians
func YawAngle(spinSpeed, elapsed float32) float32 {
	return (2 * math.Pi / spinSpeed) * elapsed
}

// ArcInterpolate computes a point along a parabolic flight arc between two
// anchors. X and Y follow a straight lerp; a height*t*(1-t) offset is added
// to Y, peaking at height/4 when t = 0.5 and vanishing at both endpoints.
//
// Parameters:
//   - startX, startY: arc start anchor
//   - endX, endY: arc end anchor
//   - t: normalized progress, expected in [0, 1]
//   - height: parabolic offset scale (DefaultArcHeight for throws)
//
// Returns:
//   - float32, float32: the interpolated point
func ArcInterpolate(startX, startY, endX, endY, t, height float32) (float32, float32) {
	x := Lerp(startX, endX, t)
	y := Lerp(startY, endY, t) + height*t*(1-t)
	return x, y
}

// ToClipSpace converts a screen-relative position (0..1, origin top-left) to
// WebGPU clip space (-1..1, origin center, Y up).
//
// Parameters:
//   - x, y: screen-relative position
//
// Returns:
//   - float32, float32: the clip-space position
func ToClipSpace(x, y float32) (float32, float32) {
	return 2*x - 1, 1 - 2*y
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
