package item

import (
	"github.com/overlayforge/sling/common"
)

// ItemBuilderOption is a function that configures an item instance during construction.
type ItemBuilderOption func(*item)

// WithName is an option builder that sets the name of the item.
//
// Parameters:
//   - name: the identifier for the item
//
// Returns:
//   - ItemBuilderOption: a function that applies the name option to an item
func WithName(name string) ItemBuilderOption {
	return func(i *item) {
		i.name = name
	}
}

// WithTexture is an option builder that sets the image drawn on the item quad.
//
// Parameters:
//   - tex: the texture data for the item
//
// Returns:
//   - ItemBuilderOption: a function that applies the texture option to an item
func WithTexture(tex *common.ItemTexture) ItemBuilderOption {
	return func(i *item) {
		i.texture = tex
	}
}

// WithScale is an option builder that sets the throw's size multiplier.
//
// Parameters:
//   - scale: the scale factor applied to the texture's normalized size
//
// Returns:
//   - ItemBuilderOption: a function that applies the scale option to an item
func WithScale(scale float32) ItemBuilderOption {
	return func(i *item) {
		i.scale = scale
	}
}

// WithSpinSpeed is an option builder that sets the throw's spin period: the
// time one full revolution takes, in the same unit as the duration.
//
// Parameters:
//   - spinSpeed: the spin period (must be non-zero)
//
// Returns:
//   - ItemBuilderOption: a function that applies the spin speed option to an item
func WithSpinSpeed(spinSpeed float32) ItemBuilderOption {
	return func(i *item) {
		i.spinSpeed = spinSpeed
	}
}

// WithDuration is an option builder that sets the throw's total flight time.
//
// Parameters:
//   - duration: the flight duration (must be positive)
//
// Returns:
//   - ItemBuilderOption: a function that applies the duration option to an item
func WithDuration(duration float32) ItemBuilderOption {
	return func(i *item) {
		i.duration = duration
	}
}

// WithArc is an option builder that sets the throw's start and end anchors in
// pixels (origin top-left).
//
// Parameters:
//   - startX, startY: the throw origin in pixels
//   - endX, endY: the throw target in pixels
//
// Returns:
//   - ItemBuilderOption: a function that applies the arc option to an item
func WithArc(startX, startY, endX, endY float32) ItemBuilderOption {
	return func(i *item) {
		i.startPosition = [2]float32{startX, startY}
		i.endPosition = [2]float32{endX, endY}
	}
}

// WithPlacement is an option builder that sets a placement item's position,
// size, and rotation. Position and size are in pixels (origin top-left).
//
// Parameters:
//   - x, y: the quad center in pixels
//   - width, height: the quad size in pixels
//   - yaw: rotation in radians
//
// Returns:
//   - ItemBuilderOption: a function that applies the placement option to an item
func WithPlacement(x, y, width, height, yaw float32) ItemBuilderOption {
	return func(i *item) {
		i.position = [2]float32{x, y}
		i.size = [2]float32{width, height}
		i.yaw = yaw
	}
}
