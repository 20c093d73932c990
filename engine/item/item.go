package item

import (
	"fmt"

	"github.com/overlayforge/sling/common"
	"github.com/overlayforge/sling/engine/renderer/bind_group_provider"
)

// Kind distinguishes how an item is positioned on screen.
type Kind int

const (
	// KindThrow animates the item along a parabolic arc, spinning as it flies.
	KindThrow Kind = iota
	// KindPlacement pins the item at a fixed position, size, and rotation.
	KindPlacement
)

// Default throw parameters applied when the builder leaves them unset.
const (
	DefaultSpinSpeed = 5000
	DefaultDuration  = 1000
	DefaultScale     = 1
)

// item is the implementation of the Item interface.
type item struct {
	name    string
	texture *common.ItemTexture
	kind    Kind

	// throw state
	scale         float32
	spinSpeed     float32
	duration      float32
	elapsed       float32
	startPosition [2]float32
	endPosition   [2]float32

	// placement state
	size     [2]float32
	position [2]float32
	yaw      float32

	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Item is a single textured quad drawn by an overlay: either a throw flying
// along an arc or a static placement. Visual properties are set at build time
// and are read-only through this interface; GPU resource references (pipeline
// key, bind group provider) are mutable so the overlay can wire them up after
// construction.
type Item interface {
	// Name retrieves the item identifier.
	//
	// Returns:
	//   - string: the name of the item
	Name() string

	// Kind retrieves how the item is positioned.
	//
	// Returns:
	//   - Kind: KindThrow or KindPlacement
	Kind() Kind

	// Texture retrieves the image drawn on the item quad.
	//
	// Returns:
	//   - *common.ItemTexture: the item texture
	Texture() *common.ItemTexture

	// Scale retrieves the size multiplier applied to the texture's
	// screen-normalized size. Only meaningful for throws.
	//
	// Returns:
	//   - float32: the scale factor
	Scale() float32

	// SpinSpeed retrieves the time one full revolution takes, in the same
	// unit as Duration. Only meaningful for throws.
	//
	// Returns:
	//   - float32: the spin period
	SpinSpeed() float32

	// Duration retrieves the total flight time of a throw.
	//
	// Returns:
	//   - float32: the flight duration
	Duration() float32

	// Elapsed retrieves the time accumulated since the throw started.
	//
	// Returns:
	//   - float32: the elapsed time
	Elapsed() float32

	// Update advances a throw's elapsed time. Placement items ignore it.
	//
	// Parameters:
	//   - dt: time step to add, in the same unit as Duration
	Update(dt float32)

	// Progress retrieves the throw's normalized flight progress, clamped
	// to [0, 1].
	//
	// Returns:
	//   - float32: elapsed/duration clamped to [0, 1]
	Progress() float32

	// Done reports whether a throw has reached the end of its flight.
	// Placement items are never done.
	//
	// Returns:
	//   - bool: true once elapsed time covers the full duration
	Done() bool

	// Validate checks that the item's parameters can produce a well-defined
	// transform. Throws with a zero spin speed or non-positive duration are
	// rejected here so the shader never divides by zero.
	//
	// Returns:
	//   - error: a descriptive error, or nil if the item is valid
	Validate() error

	// ThrowParams builds the per-frame uniform for the throw pipeline. The
	// texture size is normalized against the screen dimensions and the arc
	// anchors, given in pixels, are converted to clip space.
	//
	// Parameters:
	//   - screenWidth, screenHeight: surface dimensions in pixels
	//
	// Returns:
	//   - GPUThrowParams: uniform data ready to marshal
	ThrowParams(screenWidth, screenHeight uint32) GPUThrowParams

	// PlacementParams builds the uniform for the placement pipeline. The
	// position and quad size, given in pixels, are converted to clip space.
	//
	// Parameters:
	//   - screenWidth, screenHeight: surface dimensions in pixels
	//
	// Returns:
	//   - GPUPlacementParams: uniform data ready to marshal
	PlacementParams(screenWidth, screenHeight uint32) GPUPlacementParams

	// PipelineKey retrieves the key identifying the render pipeline this item uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this item.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey sets the render pipeline key for this item.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this item
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this item.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this item
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Item = &item{}

// NewThrow creates a throw item configured with the provided options and
// validates it. The throw starts with zero elapsed time.
//
// Parameters:
//   - options: variadic list of ItemBuilderOption functions to configure the item
//
// Returns:
//   - Item: the configured throw item
//   - error: validation error if the configuration cannot animate safely
func NewThrow(options ...ItemBuilderOption) (Item, error) {
	i := &item{
		kind:      KindThrow,
		scale:     DefaultScale,
		spinSpeed: DefaultSpinSpeed,
		duration:  DefaultDuration,
	}
	for _, opt := range options {
		opt(i)
	}
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return i, nil
}

// NewPlacement creates a statically placed item configured with the provided
// options and validates it.
//
// Parameters:
//   - options: variadic list of ItemBuilderOption functions to configure the item
//
// Returns:
//   - Item: the configured placement item
//   - error: validation error if the configuration is incomplete
func NewPlacement(options ...ItemBuilderOption) (Item, error) {
	i := &item{
		kind: KindPlacement,
		size: [2]float32{64, 64},
	}
	for _, opt := range options {
		opt(i)
	}
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *item) Name() string {
	return i.name
}

func (i *item) Kind() Kind {
	return i.kind
}

func (i *item) Texture() *common.ItemTexture {
	return i.texture
}

func (i *item) Scale() float32 {
	return i.scale
}

func (i *item) SpinSpeed() float32 {
	return i.spinSpeed
}

func (i *item) Duration() float32 {
	return i.duration
}

func (i *item) Elapsed() float32 {
	return i.elapsed
}

func (i *item) Update(dt float32) {
	if i.kind != KindThrow {
		return
	}
	i.elapsed += dt
}

func (i *item) Progress() float32 {
	if i.kind != KindThrow {
		return 0
	}
	return common.Progress(i.elapsed, i.duration)
}

func (i *item) Done() bool {
	return i.kind == KindThrow && i.elapsed >= i.duration
}

func (i *item) Validate() error {
	if i.texture == nil {
		return fmt.Errorf("item %q has no texture", i.name)
	}
	if i.kind == KindThrow {
		if i.spinSpeed == 0 {
			return fmt.Errorf("item %q has zero spin speed", i.name)
		}
		if i.duration <= 0 {
			return fmt.Errorf("item %q has non-positive duration %v", i.name, i.duration)
		}
		if i.scale <= 0 {
			return fmt.Errorf("item %q has non-positive scale %v", i.name, i.scale)
		}
	}
	return nil
}

func (i *item) ThrowParams(screenWidth, screenHeight uint32) GPUThrowParams {
	if screenWidth == 0 || screenHeight == 0 {
		return GPUThrowParams{}
	}
	sw, sh := float32(screenWidth), float32(screenHeight)
	var norm [2]float32
	if i.texture != nil {
		norm[0] = float32(i.texture.Width) / sw
		norm[1] = float32(i.texture.Height) / sh
	}
	sx, sy := common.ToClipSpace(i.startPosition[0]/sw, i.startPosition[1]/sh)
	ex, ey := common.ToClipSpace(i.endPosition[0]/sw, i.endPosition[1]/sh)
	return GPUThrowParams{
		NormTextureSize: norm,
		StartPosition:   [2]float32{sx, sy},
		EndPosition:     [2]float32{ex, ey},
		SpinSpeed:       i.spinSpeed,
		Scale:           i.scale,
		Duration:        i.duration,
		ElapsedTime:     i.elapsed,
	}
}

func (i *item) PlacementParams(screenWidth, screenHeight uint32) GPUPlacementParams {
	if screenWidth == 0 || screenHeight == 0 {
		return GPUPlacementParams{}
	}
	sw, sh := float32(screenWidth), float32(screenHeight)
	px, py := common.ToClipSpace(i.position[0]/sw, i.position[1]/sh)
	return GPUPlacementParams{
		QuadSize: [2]float32{i.size[0] / sw * 2, i.size[1] / sh * 2},
		Position: [2]float32{px, py},
		Yaw:      i.yaw,
	}
}

func (i *item) PipelineKey() string {
	return i.pipelineKey
}

func (i *item) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return i.bindGroupProvider
}

func (i *item) SetPipelineKey(key string) {
	i.pipelineKey = key
}

func (i *item) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	i.bindGroupProvider = provider
}
