package overlay

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/overlayforge/sling/common"
	"github.com/overlayforge/sling/engine/item"
	"github.com/overlayforge/sling/engine/renderer"
	"github.com/overlayforge/sling/engine/renderer/bind_group_provider"
	"github.com/overlayforge/sling/engine/renderer/pipeline"
)

// recordingRenderer is a renderer.Renderer stand-in that records the calls the
// overlay makes, so the compositor's behavior can be checked without a GPU.
type recordingRenderer struct {
	pipelines      map[string]pipeline.Pipeline
	meshInits      int
	textureInits   int
	samplerInits   int
	bindGroupInits int
	writes         [][]bind_group_provider.BufferWrite
	drawOrder      []string
}

var _ renderer.Renderer = &recordingRenderer{}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{pipelines: make(map[string]pipeline.Pipeline)}
}

func (r *recordingRenderer) Pipeline(key string) pipeline.Pipeline {
	return r.pipelines[key]
}

func (r *recordingRenderer) Pipelines() map[string]pipeline.Pipeline {
	return r.pipelines
}

func (r *recordingRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *recordingRenderer) SetPipeline(key string, p pipeline.Pipeline) {
	r.pipelines[key] = p
}

func (r *recordingRenderer) SetPipelines(pipelines map[string]pipeline.Pipeline) {
	r.pipelines = pipelines
}

func (r *recordingRenderer) Resize(width, height int) {}

func (r *recordingRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	r.meshInits++
	provider.SetIndexCount(indexCount)
	return nil
}

func (r *recordingRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	r.bindGroupInits++
	return nil
}

func (r *recordingRenderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	r.textureInits++
	return nil
}

func (r *recordingRenderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	r.samplerInits++
	return nil
}

func (r *recordingRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	staged := make([]bind_group_provider.BufferWrite, len(writes))
	copy(staged, writes)
	r.writes = append(r.writes, staged)
}

func (r *recordingRenderer) BeginFrame() error { return nil }

func (r *recordingRenderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.drawOrder = append(r.drawOrder, pipelineKey)
	return nil
}

func (r *recordingRenderer) EndFrame() {}

func (r *recordingRenderer) Present() {}

func (r *recordingRenderer) SetPresentMode(mode renderer.PresentMode) {}

func testTexture(t *testing.T) *common.ItemTexture {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test texture: %v", err)
	}
	return &common.ItemTexture{Name: "test", Data: buf.Bytes()}
}

func newThrowItem(t *testing.T, name string, duration float32) item.Item {
	t.Helper()
	itm, err := item.NewThrow(
		item.WithName(name),
		item.WithTexture(testTexture(t)),
		item.WithArc(0, 0, 100, 100),
		item.WithDuration(duration),
	)
	if err != nil {
		t.Fatalf("failed to build throw item: %v", err)
	}
	return itm
}

func newPlacementItem(t *testing.T, name string) item.Item {
	t.Helper()
	itm, err := item.NewPlacement(
		item.WithName(name),
		item.WithTexture(testTexture(t)),
		item.WithPlacement(100, 100, 32, 32, 0),
	)
	if err != nil {
		t.Fatalf("failed to build placement item: %v", err)
	}
	return itm
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	r := newRecordingRenderer()
	o := NewOverlay("test", r, 640, 480)

	var ids []uint64
	for i := 0; i < 3; i++ {
		id, err := o.Add(newThrowItem(t, "throw", 1000))
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		ids = append(ids, id)
	}
	for i, id := range ids {
		if id != uint64(i) {
			t.Errorf("expected id %d, got %d", i, id)
		}
	}
	if o.Count() != 3 {
		t.Errorf("expected 3 items, got %d", o.Count())
	}
}

func TestAddRejectsWrongKind(t *testing.T) {
	r := newRecordingRenderer()
	o := NewOverlay("test", r, 640, 480)

	if _, err := o.Add(newPlacementItem(t, "placed")); err == nil {
		t.Error("expected Add to reject a placement item")
	}
	if _, err := o.Place(newThrowItem(t, "thrown", 1000)); err == nil {
		t.Error("expected Place to reject a throw item")
	}
	if _, err := o.Add(nil); err == nil {
		t.Error("expected Add to reject nil")
	}
}

func TestAddInitializesGPUResources(t *testing.T) {
	r := newRecordingRenderer()
	o := NewOverlay("test", r, 640, 480)

	if _, err := o.Add(newThrowItem(t, "throw", 1000)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if r.meshInits != 1 {
		t.Errorf("expected 1 quad mesh init, got %d", r.meshInits)
	}
	if r.textureInits != 1 || r.samplerInits != 1 {
		t.Errorf("expected 1 texture and 1 sampler init, got %d and %d", r.textureInits, r.samplerInits)
	}
	// One bind group for the texture/sampler, one for the uniform params.
	if r.bindGroupInits != 2 {
		t.Errorf("expected 2 bind group inits, got %d", r.bindGroupInits)
	}
	if _, ok := r.pipelines[ThrowPipelineKey]; !ok {
		t.Error("expected throw pipeline to be registered")
	}
	if _, ok := r.pipelines[PlacementPipelineKey]; !ok {
		t.Error("expected placement pipeline to be registered")
	}

	// The quad mesh is shared, so a second add must not re-upload it.
	if _, err := o.Add(newThrowItem(t, "throw2", 1000)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if r.meshInits != 1 {
		t.Errorf("expected quad mesh init to run once, got %d", r.meshInits)
	}
}

func TestAddBatchAssignsIDsInOrder(t *testing.T) {
	r := newRecordingRenderer()
	o := NewOverlay("test", r, 640, 480, WithDecodeWorkers(2))

	items := []item.Item{
		newThrowItem(t, "a", 1000),
		newThrowItem(t, "b", 1000),
		newThrowItem(t, "c", 1000),
		newThrowItem(t, "d", 1000),
	}
	ids, err := o.AddBatch(items...)
	if err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}
	if len(ids) != len(items) {
		t.Fatalf("expected %d ids, got %d", len(items), len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[i-1]+1 {
			t.Errorf("expected consecutive ids, got %v", ids)
		}
	}
	for i, id := range ids {
		if o.Item(id) != items[i] {
			t.Errorf("id %d resolves to the wrong item", id)
		}
	}
}

func TestAdvanceDropsFinishedThrows(t *testing.T) {
	r := newRecordingRenderer()
	o := NewOverlay("test", r, 640, 480)

	shortID, err := o.Add(newThrowItem(t, "short", 100))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	longID, err := o.Add(newThrowItem(t, "long", 1000))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	placedID, err := o.Place(newPlacementItem(t, "placed"))
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	o.Advance(500)

	if o.Item(shortID) != nil {
		t.Error("expected finished throw to be dropped")
	}
	if o.Item(longID) == nil {
		t.Error("expected in-flight throw to survive")
	}
	if o.Item(placedID) == nil {
		t.Error("expected placement to survive Advance")
	}

	o.Advance(600)
	if o.Item(longID) != nil {
		t.Error("expected long throw to be dropped after its duration elapsed")
	}
	if o.Count() != 1 {
		t.Errorf("expected only the placement to remain, got %d items", o.Count())
	}
}

func TestDrawCallsOrdersPlacementsFirst(t *testing.T) {
	r := newRecordingRenderer()
	o := NewOverlay("test", r, 640, 480)

	if _, err := o.Add(newThrowItem(t, "throw", 1000)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := o.Place(newPlacementItem(t, "placed")); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	if err := o.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls failed: %v", err)
	}

	want := []string{PlacementPipelineKey, ThrowPipelineKey}
	if len(r.drawOrder) != len(want) {
		t.Fatalf("expected %d draws, got %d", len(want), len(r.drawOrder))
	}
	for i := range want {
		if r.drawOrder[i] != want[i] {
			t.Errorf("draw %d: expected pipeline %s, got %s", i, want[i], r.drawOrder[i])
		}
	}

	// Both uniform writes must be staged in a single coalesced submission.
	if len(r.writes) != 1 {
		t.Fatalf("expected 1 coalesced write submission, got %d", len(r.writes))
	}
	if len(r.writes[0]) != 2 {
		t.Errorf("expected 2 staged writes, got %d", len(r.writes[0]))
	}
}

func TestDrawCallsInactiveSkips(t *testing.T) {
	r := newRecordingRenderer()
	o := NewOverlay("test", r, 640, 480, WithActive(false))

	if _, err := o.Add(newThrowItem(t, "throw", 1000)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := o.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls failed: %v", err)
	}
	if len(r.drawOrder) != 0 {
		t.Errorf("expected no draws while inactive, got %d", len(r.drawOrder))
	}

	o.SetActive(true)
	if err := o.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls failed: %v", err)
	}
	if len(r.drawOrder) != 1 {
		t.Errorf("expected 1 draw after activation, got %d", len(r.drawOrder))
	}
}

func TestRemoveAndClear(t *testing.T) {
	r := newRecordingRenderer()
	o := NewOverlay("test", r, 640, 480)

	id, err := o.Add(newThrowItem(t, "throw", 1000))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !o.Remove(id) {
		t.Error("expected Remove to report success")
	}
	if o.Remove(id) {
		t.Error("expected second Remove to report failure")
	}
	if o.Count() != 0 {
		t.Errorf("expected 0 items after Remove, got %d", o.Count())
	}

	if _, err := o.Add(newThrowItem(t, "throw", 1000)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := o.Place(newPlacementItem(t, "placed")); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	o.Clear()
	if o.Count() != 0 {
		t.Errorf("expected 0 items after Clear, got %d", o.Count())
	}
	if err := o.DrawCalls(); err != nil {
		t.Fatalf("DrawCalls failed after Clear: %v", err)
	}
}
