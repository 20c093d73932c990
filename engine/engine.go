package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/overlayforge/sling/common"
	"github.com/overlayforge/sling/engine/overlay"
	"github.com/overlayforge/sling/engine/profiler"
	"github.com/overlayforge/sling/engine/window"
)

// engine implements the Engine interface.
// Coordinates tick, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	overlaysMu sync.RWMutex
	overlays   map[string]overlay.Overlay

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the overlay runtime.
// It orchestrates the tick loop, render loop, and window management.
// The tick loop advances throw animations at a fixed rate; the render loop
// composites every active overlay in ascending z-order.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// Throw animations advance at this rate.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, after
	// the overlays have been advanced.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddOverlay registers an overlay by name. Overlays draw in ascending
	// Z order during the render loop; an overlay with the same name replaces
	// the existing one.
	//
	// Parameters:
	//   - o: the overlay to register
	AddOverlay(o overlay.Overlay)

	// RemoveOverlay removes the overlay with the given name.
	//
	// Parameters:
	//   - name: the name of the overlay to remove
	RemoveOverlay(name string)

	// Overlay retrieves the overlay with the given name.
	//
	// Parameters:
	//   - name: the name of the overlay to retrieve
	//
	// Returns:
	//   - overlay.Overlay: the overlay, or nil if not found
	Overlay(name string) overlay.Overlay

	// Overlays returns a copy of all registered overlays keyed by name.
	//
	// Returns:
	//   - map[string]overlay.Overlay: a copy of the overlays map
	Overlays() map[string]overlay.Overlay

	// Run starts the main engine loop (blocks until window closes).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// When a window is supplied, the engine wires the standard overlay hotkeys:
// Space clears every overlay and C toggles the profiler. Escape is handled by
// the window itself and closes it.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		overlays:         make(map[string]overlay.Overlay),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.overlaysMu.RLock()
			defer e.overlaysMu.RUnlock()
			for _, o := range e.overlays {
				if r := o.Renderer(); r != nil {
					r.Resize(width, height)
				}
				o.Resize(width, height)
			}
		})
		e.window.SetKeyDownCallback(func(keyCode uint32) {
			switch keyCode {
			case common.KeySpace:
				e.overlaysMu.RLock()
				defer e.overlaysMu.RUnlock()
				for _, o := range e.overlays {
					o.Clear()
				}
			case common.KeyC:
				if e.profilingEnabled {
					e.DisableProfiler()
				} else {
					e.EnableProfiler()
				}
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.handle()
	e.window.ProcessMessages()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.running = true
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Advances every overlay's throw animations, fires the tick callback, and
// listens for dynamic rate changes via tickRateChannel. Exits when the quit
// channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			// Item durations are in milliseconds.
			e.overlaysMu.RLock()
			for _, o := range e.overlays {
				o.Advance(dt * 1000)
			}
			e.overlaysMu.RUnlock()

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the frame-limited render loop in its own goroutine.
// Composites active overlays in ascending Z order within a single render pass.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			// One pass composites every active overlay: BeginFrame once,
			// DrawCalls per overlay in ascending Z order, EndFrame + Present once.
			active := e.activeOverlays()

			if len(active) > 0 {
				// Use the first active overlay's renderer to manage the frame.
				frameRenderer := active[0].Renderer()
				if frameRenderer != nil {
					if err := frameRenderer.BeginFrame(); err == nil {
						for _, o := range active {
							if err := o.DrawCalls(); err != nil {
								log.Printf("overlay %s draw failed: %v", o.Name(), err)
							}
						}
						frameRenderer.EndFrame()
						frameRenderer.Present()
					}
				}
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				total := 0
				for _, o := range active {
					total += o.Count()
				}
				e.profiler.SetItemCount(total)
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// activeOverlays returns the active overlays sorted by ascending Z, so lower
// overlays draw first and higher ones composite above them.
func (e *engine) activeOverlays() []overlay.Overlay {
	e.overlaysMu.RLock()
	defer e.overlaysMu.RUnlock()

	active := make([]overlay.Overlay, 0, len(e.overlays))
	for _, o := range e.overlays {
		if o.Active() {
			active = append(active, o)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Z() < active[j].Z()
	})
	return active
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Send to channel for immediate update in running engine loop
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddOverlay(o overlay.Overlay) {
	e.overlaysMu.Lock()
	defer e.overlaysMu.Unlock()
	e.overlays[o.Name()] = o
}

func (e *engine) RemoveOverlay(name string) {
	e.overlaysMu.Lock()
	defer e.overlaysMu.Unlock()
	delete(e.overlays, name)
}

func (e *engine) Overlay(name string) overlay.Overlay {
	e.overlaysMu.RLock()
	defer e.overlaysMu.RUnlock()
	return e.overlays[name]
}

func (e *engine) Overlays() map[string]overlay.Overlay {
	e.overlaysMu.RLock()
	defer e.overlaysMu.RUnlock()
	cp := make(map[string]overlay.Overlay, len(e.overlays))
	for k, v := range e.overlays {
		cp[k] = v
	}
	return cp
}
