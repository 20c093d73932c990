package item

import (
	"github.com/overlayforge/sling/common"
)

// TransformThrowVertex applies the throw vertex transform on the CPU,
// mirroring the WGSL throw pipeline step for step: clamp flight progress,
// derive the spin angle from elapsed time, rotate the quad-local vertex,
// scale it by the effective item size, and translate it to the arc anchor.
// The transform order is rotate, then scale, then translate.
//
// Parameters:
//   - params: the throw uniform data
//   - localX, localY: vertex position in quad-local space
//
// Returns:
//   - [4]float32: the clip-space position (z = 0, w = 1)
func TransformThrowVertex(params GPUThrowParams, localX, localY float32) [4]float32 {
	t := common.Progress(params.ElapsedTime, params.Duration)
	yaw := common.YawAngle(params.SpinSpeed, params.ElapsedTime)

	rx, ry := common.Rotate(localX, localY, yaw)

	sizeX := params.NormTextureSize[0] * params.Scale
	sizeY := params.NormTextureSize[1] * params.Scale

	ax, ay := common.ArcInterpolate(
		params.StartPosition[0], params.StartPosition[1],
		params.EndPosition[0], params.EndPosition[1],
		t, common.DefaultArcHeight,
	)

	return [4]float32{rx*sizeX + ax, ry*sizeY + ay, 0, 1}
}

// TransformPlacementVertex applies the static placement vertex transform on
// the CPU, mirroring the WGSL placement pipeline: rotate the quad-local
// vertex by the fixed yaw, scale it by the quad size, and translate it to
// the quad center. The local Z coordinate is ignored.
//
// Parameters:
//   - params: the placement uniform data
//   - localX, localY: vertex position in quad-local space
//
// Returns:
//   - [4]float32: the clip-space position (z = 0, w = 1)
func TransformPlacementVertex(params GPUPlacementParams, localX, localY float32) [4]float32 {
	rx, ry := common.Rotate(localX, localY, params.Yaw)
	return [4]float32{
		rx*params.QuadSize[0] + params.Position[0],
		ry*params.QuadSize[1] + params.Position[1],
		0, 1,
	}
}
