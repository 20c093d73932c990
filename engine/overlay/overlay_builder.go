package overlay

// OverlayBuilderOption is a functional option for configuring an Overlay
// during construction with NewOverlay.
type OverlayBuilderOption func(*overlay)

// WithActive sets whether the overlay starts active. Overlays are active by
// default.
//
// Parameters:
//   - active: true to draw the overlay, false to start it hidden
//
// Returns:
//   - OverlayBuilderOption: the option to apply
func WithActive(active bool) OverlayBuilderOption {
	return func(o *overlay) {
		o.active = active
	}
}

// WithZ sets the overlay's stacking order. Overlays with a lower Z draw first.
//
// Parameters:
//   - z: the stacking order
//
// Returns:
//   - OverlayBuilderOption: the option to apply
func WithZ(z int) OverlayBuilderOption {
	return func(o *overlay) {
		o.z = z
	}
}

// WithDecodeWorkers sets the number of workers used for the parallel
// texture-decode phase of AddBatch. Defaults to the machine's logical CPU
// count minus one, with a floor of one.
//
// Parameters:
//   - workers: the worker count, values below one fall back to the default
//
// Returns:
//   - OverlayBuilderOption: the option to apply
func WithDecodeWorkers(workers int) OverlayBuilderOption {
	return func(o *overlay) {
		o.decodeWorkers = workers
	}
}
