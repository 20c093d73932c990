package overlay

import (
	_ "embed"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/overlayforge/sling/common"
	"github.com/overlayforge/sling/engine/item"
	"github.com/overlayforge/sling/engine/renderer"
	"github.com/overlayforge/sling/engine/renderer/bind_group_provider"
	"github.com/overlayforge/sling/engine/renderer/pipeline"
	"github.com/overlayforge/sling/engine/renderer/shader"
)

//go:embed assets/throw_vert.wgsl
var throwVertSource string

//go:embed assets/placement_vert.wgsl
var placementVertSource string

//go:embed assets/textured_frag.wgsl
var texturedFragSource string

const (
	// ThrowPipelineKey identifies the shared render pipeline for thrown items.
	ThrowPipelineKey = "item_throw"
	// PlacementPipelineKey identifies the shared render pipeline for placed items.
	PlacementPipelineKey = "item_placement"
)

// entry pairs a registered item with the bind group provider holding its
// texture and sampler. The per-item uniform provider lives on the item itself.
type entry struct {
	id      uint64
	itm     item.Item
	texture bind_group_provider.BindGroupProvider
}

type overlay struct {
	mu sync.RWMutex

	name   string
	r      renderer.Renderer
	active bool
	z      int

	screenWidth  uint32
	screenHeight uint32

	nextID     uint64
	throws     []*entry
	placements []*entry
	byID       map[uint64]*entry

	// decodePool manages a bounded set of reusable goroutines for the parallel
	// texture-decode phase of batched adds. Workers spin down after sitting
	// idle, so the pool carries no cost between bursts.
	decodePool    worker.DynamicWorkerPool
	decodeWorkers int

	throwShader     shader.Shader
	placementShader shader.Shader
	fragShader      shader.Shader

	// Group and binding indices discovered from the shader annotations.
	paramsGroup   int
	paramsBinding int
	itemGroup     int
	texBinding    int
	sampBinding   int

	// quad holds the shared unit-quad vertex and index buffers every item draws with.
	quad     bind_group_provider.BindGroupProvider
	gpuReady bool

	// writePool is reused across DrawCalls invocations to stage coalesced
	// uniform writes without re-allocating every frame.
	writePool []bind_group_provider.BufferWrite
}

// Overlay is a thread-safe compositor for throwable and placeable items drawn
// over a transparent surface. Thrown items animate along a parabolic arc and
// are dropped once their flight completes; placed items stay until removed.
// All items share one unit-quad mesh and one of two render pipelines, with a
// small per-item uniform buffer selecting what each draw shows.
type Overlay interface {
	// Name returns the overlay's identifying name.
	//
	// Returns:
	//   - string: the overlay name
	Name() string

	// Renderer returns the renderer the overlay draws with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Active reports whether the overlay should be drawn.
	//
	// Returns:
	//   - bool: true if the overlay is drawn by the engine's render loop
	Active() bool

	// SetActive sets whether the overlay should be drawn.
	//
	// Parameters:
	//   - active: true to draw the overlay, false to skip it
	SetActive(active bool)

	// Z returns the overlay's stacking order. Overlays with a lower Z draw first.
	//
	// Returns:
	//   - int: the stacking order
	Z() int

	// SetZ sets the overlay's stacking order.
	//
	// Parameters:
	//   - z: the stacking order, lower draws first
	SetZ(z int)

	// Add registers a thrown item, decodes its texture, initializes its GPU
	// resources, and assigns it a unique id. The item begins its flight on the
	// next Advance call.
	//
	// Parameters:
	//   - itm: the item to add, must be of kind item.KindThrow
	//
	// Returns:
	//   - uint64: the id assigned to the item
	//   - error: an error if the item is invalid or GPU initialization fails
	Add(itm item.Item) (uint64, error)

	// AddBatch registers multiple thrown items at once. Texture decodes run in
	// parallel on the overlay's worker pool; GPU initialization then runs
	// serially in argument order, so ids are assigned in the order given.
	//
	// Parameters:
	//   - items: the items to add, each of kind item.KindThrow
	//
	// Returns:
	//   - []uint64: the ids assigned to the items, in argument order
	//   - error: the first error encountered; items before it are still added
	AddBatch(items ...item.Item) ([]uint64, error)

	// Place registers a statically placed item, decodes its texture,
	// initializes its GPU resources, and assigns it a unique id. Placed items
	// draw beneath all thrown items.
	//
	// Parameters:
	//   - itm: the item to place, must be of kind item.KindPlacement
	//
	// Returns:
	//   - uint64: the id assigned to the item
	//   - error: an error if the item is invalid or GPU initialization fails
	Place(itm item.Item) (uint64, error)

	// Item retrieves a registered item by id.
	//
	// Parameters:
	//   - id: the id assigned by Add, AddBatch, or Place
	//
	// Returns:
	//   - item.Item: the item, or nil if no item has that id
	Item(id uint64) item.Item

	// Remove unregisters an item and releases its GPU resources.
	//
	// Parameters:
	//   - id: the id of the item to remove
	//
	// Returns:
	//   - bool: true if an item with that id was removed
	Remove(id uint64) bool

	// Clear unregisters every item and releases all per-item GPU resources.
	Clear()

	// Count returns the number of registered items, thrown and placed.
	//
	// Returns:
	//   - int: the item count
	Count() int

	// Advance steps every thrown item's elapsed time by dt and drops throws
	// whose flight has completed. Call once per tick before DrawCalls.
	//
	// Parameters:
	//   - dt: the time step in the same unit as the items' durations
	Advance(dt float32)

	// Resize updates the screen dimensions used to normalize item texture
	// sizes. Call whenever the window's framebuffer size changes.
	//
	// Parameters:
	//   - width: the new screen width in pixels
	//   - height: the new screen height in pixels
	Resize(width, height int)

	// DrawCalls stages the per-item uniform writes and issues one indexed draw
	// per item, placed items first so throws composite above them. Must be
	// called between the renderer's BeginFrame and EndFrame. A no-op when the
	// overlay is inactive.
	//
	// Returns:
	//   - error: an error if any draw call fails
	DrawCalls() error
}

var _ Overlay = &overlay{}

// NewOverlay creates an overlay bound to the given renderer. Pipelines and the
// shared quad mesh are initialized lazily on the first Add or Place, so an
// overlay can be constructed before the renderer's surface is configured.
//
// Parameters:
//   - name: the overlay's identifying name, must not be empty
//   - r: the renderer the overlay draws with, must not be nil
//   - screenWidth: the initial screen width in pixels, must be positive
//   - screenHeight: the initial screen height in pixels, must be positive
//   - options: optional builder options to configure the overlay
//
// Returns:
//   - Overlay: the new overlay
func NewOverlay(name string, r renderer.Renderer, screenWidth, screenHeight int, options ...OverlayBuilderOption) Overlay {
	if name == "" {
		panic("overlay name must not be empty")
	}
	if r == nil {
		panic("overlay renderer must not be nil")
	}
	if screenWidth <= 0 || screenHeight <= 0 {
		panic("overlay screen dimensions must be positive")
	}

	o := &overlay{
		name:         name,
		r:            r,
		active:       true,
		screenWidth:  uint32(screenWidth),
		screenHeight: uint32(screenHeight),
		byID:         make(map[uint64]*entry),
	}
	for _, opt := range options {
		opt(o)
	}

	if o.decodeWorkers <= 0 {
		o.decodeWorkers = max(runtime.NumCPU()-1, 1)
	}
	o.decodePool = worker.NewDynamicWorkerPool(o.decodeWorkers, 64, 1*time.Second)

	o.throwShader = shader.NewShader("throw_vert", shader.ShaderTypeVertex, throwVertSource)
	o.placementShader = shader.NewShader("placement_vert", shader.ShaderTypeVertex, placementVertSource)
	o.fragShader = shader.NewShader("textured_frag", shader.ShaderTypeFragment, texturedFragSource)
	o.resolveBindings()

	return o
}

// resolveBindings walks the shader annotation declarations to locate the
// uniform params binding and the item texture/sampler bindings, so the rest of
// the overlay never hard-codes group or binding indices.
func (o *overlay) resolveBindings() {
	for _, decl := range o.throwShader.Declarations() {
		if decl.Type != shader.AnnotationTypeBindingGroup || decl.Group == nil || decl.Binding == nil {
			continue
		}
		if decl.Args[2] == shader.AnnotationArgThrowParams {
			o.paramsGroup = *decl.Group
			o.paramsBinding = *decl.Binding
		}
	}
	for _, decl := range o.fragShader.Declarations() {
		if decl.Type != shader.AnnotationTypeProvider || decl.Group == nil || decl.Binding == nil {
			continue
		}
		if decl.Args[0] != shader.AnnotationArgItem || len(decl.Args) < 2 {
			continue
		}
		o.itemGroup = *decl.Group
		switch decl.Args[1] {
		case shader.AnnotationArgItemTexture:
			o.texBinding = *decl.Binding
		case shader.AnnotationArgItemSampler:
			o.sampBinding = *decl.Binding
		}
	}
}

// ensureGPU registers the two shared item pipelines and uploads the shared
// quad mesh. Runs once, on the first Add or Place. Caller must hold o.mu.
func (o *overlay) ensureGPU() error {
	if o.gpuReady {
		return nil
	}

	throwPipeline := pipeline.NewPipeline(ThrowPipelineKey,
		pipeline.WithVertexShader(o.throwShader),
		pipeline.WithFragmentShader(o.fragShader),
	)
	placementPipeline := pipeline.NewPipeline(PlacementPipelineKey,
		pipeline.WithVertexShader(o.placementShader),
		pipeline.WithFragmentShader(o.fragShader),
	)
	if err := o.r.RegisterPipelines(throwPipeline, placementPipeline); err != nil {
		return fmt.Errorf("failed to register overlay pipelines: %w", err)
	}

	indices := item.QuadIndices()
	quad := bind_group_provider.NewBindGroupProvider(o.name + "_quad")
	if err := o.r.InitMeshBuffers(quad, item.MarshalQuad(), common.SliceToBytes(indices), len(indices)); err != nil {
		return fmt.Errorf("failed to init overlay quad mesh: %w", err)
	}

	o.quad = quad
	o.gpuReady = true
	return nil
}

// initItem uploads an item's texture and sampler, allocates its uniform
// buffer, and wires the item to the given pipeline. staging may be nil, in
// which case the texture is decoded inline. Caller must hold o.mu.
func (o *overlay) initItem(itm item.Item, pipelineKey string, vert shader.Shader, staging *common.TextureStagingData) (*entry, error) {
	if err := o.ensureGPU(); err != nil {
		return nil, err
	}

	tex := itm.Texture()
	if staging == nil {
		pixels, w, h, err := tex.Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to decode texture for item %s: %w", itm.Name(), err)
		}
		staging = &common.TextureStagingData{Pixels: pixels, Width: w, Height: h}
	}

	id := atomic.AddUint64(&o.nextID, 1) - 1

	textureBGP := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s_item_%d", o.name, id))
	if err := o.r.InitTextureView(textureBGP, o.texBinding, *staging); err != nil {
		return nil, fmt.Errorf("failed to init texture view for item %s: %w", itm.Name(), err)
	}
	if err := o.r.InitSampler(textureBGP, o.sampBinding, tex.Sampler()); err != nil {
		return nil, fmt.Errorf("failed to init sampler for item %s: %w", itm.Name(), err)
	}
	if err := o.r.InitBindGroup(textureBGP, o.fragShader.BindGroupLayoutDescriptor(o.itemGroup), nil, nil); err != nil {
		return nil, fmt.Errorf("failed to init item bind group for item %s: %w", itm.Name(), err)
	}

	paramsBGP := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s_params_%d", o.name, id))
	if err := o.r.InitBindGroup(paramsBGP, vert.BindGroupLayoutDescriptor(o.paramsGroup), nil, nil); err != nil {
		return nil, fmt.Errorf("failed to init params bind group for item %s: %w", itm.Name(), err)
	}

	itm.SetPipelineKey(pipelineKey)
	itm.SetBindGroupProvider(paramsBGP)

	e := &entry{id: id, itm: itm, texture: textureBGP}
	o.byID[id] = e
	return e, nil
}

func (o *overlay) Name() string {
	return o.name
}

func (o *overlay) Renderer() renderer.Renderer {
	return o.r
}

func (o *overlay) Active() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active
}

func (o *overlay) SetActive(active bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = active
}

func (o *overlay) Z() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.z
}

func (o *overlay) SetZ(z int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.z = z
}

func (o *overlay) Add(itm item.Item) (uint64, error) {
	if itm == nil {
		return 0, fmt.Errorf("item must not be nil")
	}
	if itm.Kind() != item.KindThrow {
		return 0, fmt.Errorf("item %s is not a throw", itm.Name())
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	e, err := o.initItem(itm, ThrowPipelineKey, o.throwShader, nil)
	if err != nil {
		return 0, err
	}
	o.throws = append(o.throws, e)
	return e.id, nil
}

func (o *overlay) AddBatch(items ...item.Item) ([]uint64, error) {
	for _, itm := range items {
		if itm == nil {
			return nil, fmt.Errorf("item must not be nil")
		}
		if itm.Kind() != item.KindThrow {
			return nil, fmt.Errorf("item %s is not a throw", itm.Name())
		}
	}

	type decodeResult struct {
		staging common.TextureStagingData
		err     error
	}
	results := make([]decodeResult, len(items))

	var wg sync.WaitGroup
	for i, itm := range items {
		wg.Add(1)
		idx, tex := i, itm.Texture()
		o.decodePool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				pixels, w, h, err := tex.Decode()
				if err != nil {
					results[idx].err = err
					return nil, err
				}
				results[idx].staging = common.TextureStagingData{Pixels: pixels, Width: w, Height: h}
				return nil, nil
			},
		})
	}
	wg.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()

	ids := make([]uint64, 0, len(items))
	for i, itm := range items {
		if results[i].err != nil {
			return ids, fmt.Errorf("failed to decode texture for item %s: %w", itm.Name(), results[i].err)
		}
		e, err := o.initItem(itm, ThrowPipelineKey, o.throwShader, &results[i].staging)
		if err != nil {
			return ids, err
		}
		o.throws = append(o.throws, e)
		ids = append(ids, e.id)
	}
	return ids, nil
}

func (o *overlay) Place(itm item.Item) (uint64, error) {
	if itm == nil {
		return 0, fmt.Errorf("item must not be nil")
	}
	if itm.Kind() != item.KindPlacement {
		return 0, fmt.Errorf("item %s is not a placement", itm.Name())
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	e, err := o.initItem(itm, PlacementPipelineKey, o.placementShader, nil)
	if err != nil {
		return 0, err
	}
	o.placements = append(o.placements, e)
	return e.id, nil
}

func (o *overlay) Item(id uint64) item.Item {
	o.mu.RLock()
	defer o.mu.RUnlock()
	e, ok := o.byID[id]
	if !ok {
		return nil
	}
	return e.itm
}

func (o *overlay) Remove(id uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.byID[id]
	if !ok {
		return false
	}
	o.release(e)
	delete(o.byID, id)
	o.throws = removeEntry(o.throws, id)
	o.placements = removeEntry(o.placements, id)
	return true
}

func (o *overlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, e := range o.byID {
		o.release(e)
	}
	o.byID = make(map[uint64]*entry)
	o.throws = o.throws[:0]
	o.placements = o.placements[:0]
}

func (o *overlay) Count() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.byID)
}

func (o *overlay) Advance(dt float32) {
	o.mu.Lock()
	defer o.mu.Unlock()

	kept := o.throws[:0]
	for _, e := range o.throws {
		e.itm.Update(dt)
		if e.itm.Done() {
			o.release(e)
			delete(o.byID, e.id)
			continue
		}
		kept = append(kept, e)
	}
	// Zero the tail so dropped entries don't pin their items.
	for i := len(kept); i < len(o.throws); i++ {
		o.throws[i] = nil
	}
	o.throws = kept
}

func (o *overlay) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.screenWidth = uint32(width)
	o.screenHeight = uint32(height)
}

func (o *overlay) DrawCalls() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.active || !o.gpuReady {
		return nil
	}
	if len(o.placements) == 0 && len(o.throws) == 0 {
		return nil
	}

	// Stage all uniform writes first so the renderer can coalesce them into a
	// single queue submission before any draw is issued.
	writes := o.writePool[:0]
	for _, e := range o.placements {
		params := e.itm.PlacementParams(o.screenWidth, o.screenHeight)
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: e.itm.BindGroupProvider(),
			Binding:  o.paramsBinding,
			Data:     params.Marshal(),
		})
	}
	for _, e := range o.throws {
		params := e.itm.ThrowParams(o.screenWidth, o.screenHeight)
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: e.itm.BindGroupProvider(),
			Binding:  o.paramsBinding,
			Data:     params.Marshal(),
		})
	}
	o.writePool = writes
	o.r.WriteBuffers(writes)

	// Placements draw first so throws composite above them.
	for _, e := range o.placements {
		if err := o.draw(e); err != nil {
			return err
		}
	}
	for _, e := range o.throws {
		if err := o.draw(e); err != nil {
			return err
		}
	}
	return nil
}

// draw issues the indexed draw for a single item. Caller must hold o.mu.
func (o *overlay) draw(e *entry) error {
	groupCount := max(o.paramsGroup, o.itemGroup) + 1
	bindGroups := make([]bind_group_provider.BindGroupProvider, groupCount)
	bindGroups[o.paramsGroup] = e.itm.BindGroupProvider()
	bindGroups[o.itemGroup] = e.texture

	if err := o.r.DrawCall(e.itm.PipelineKey(), o.quad, 1, bindGroups); err != nil {
		return fmt.Errorf("draw call failed for item %s: %w", e.itm.Name(), err)
	}
	return nil
}

// release frees an entry's GPU resources. Caller must hold o.mu.
func (o *overlay) release(e *entry) {
	if e.texture != nil {
		e.texture.Release()
	}
	if bgp := e.itm.BindGroupProvider(); bgp != nil {
		bgp.Release()
		e.itm.SetBindGroupProvider(nil)
	}
}

func removeEntry(entries []*entry, id uint64) []*entry {
	for i, e := range entries {
		if e.id == id {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}
