package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const throwVertSource = `//@sling:include throw_params
//@sling:group 0 0 storage_uniform params throw_params
//@sling:include sprite_vertex

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex_coord: vec2<f32>,
}

@vertex
fn vs_main(in: SpriteVertex) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(in.position, 0.0, 1.0);
    out.tex_coord = in.tex_coord;
    return out;
}
`

const texturedFragSource = `//@sling:provider 1 0 item item_texture
@group(1) @binding(0) var item_texture: texture_2d<f32>;
//@sling:provider 1 1 item item_sampler
@group(1) @binding(1) var item_sampler: sampler;

@fragment
fn fs_main(@location(0) tex_coord: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(item_texture, item_sampler, tex_coord);
}
`

func TestPreProcessorInjectsStructs(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(throwVertSource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "struct ThrowParams") {
		t.Error("ThrowParams struct source was not injected")
	}
	if !strings.Contains(out, "struct SpriteVertex") {
		t.Error("SpriteVertex struct source was not injected")
	}
	if !strings.Contains(out, "@group(0) @binding(0) var<uniform> params: ThrowParams;") {
		t.Error("group annotation did not generate the uniform declaration")
	}
	if strings.Contains(out, "@sling:") {
		t.Error("processed source still contains annotations")
	}
}

func TestPreProcessorDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	if _, err := pp.Process(texturedFragSource); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decls := pp.Declarations()
	if len(decls) != 2 {
		t.Fatalf("declaration count: got %d, want 2", len(decls))
	}
	if decls[0].Type != AnnotationTypeProvider || decls[0].Args[0] != AnnotationArgItem {
		t.Errorf("first declaration: got %+v", decls[0])
	}
	if decls[0].Args[1] != AnnotationArgItemTexture {
		t.Errorf("first binding role: got %q", decls[0].Args[1])
	}
	if decls[1].Args[1] != AnnotationArgItemSampler {
		t.Errorf("second binding role: got %q", decls[1].Args[1])
	}
}

func TestPreProcessorInjectsRotateFunction(t *testing.T) {
	source := `//@sling:include rotate
@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(rotate(position, 1.0), 0.0, 1.0);
}
`
	pp := NewPreProcessor()
	out, err := pp.Process(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "fn rotate(p: vec2<f32>, angle: f32) -> vec2<f32>") {
		t.Error("rotate helper was not injected")
	}
	if strings.Contains(out, "@sling:") {
		t.Error("processed source still contains annotations")
	}
	// Function snippets are include-only and type no group declaration.
	if _, err := pp.Process("//@sling:group 0 0 storage_uniform params rotate\n"); err == nil {
		t.Error("group annotation should reject function snippet keys")
	}
}

func TestPreProcessorRejectsUnknownStruct(t *testing.T) {
	pp := NewPreProcessor()
	if _, err := pp.Process("//@sling:include bogus\n"); err == nil {
		t.Fatal("expected error for unknown struct type")
	}
}

func TestPreProcessorRejectsMalformedGroup(t *testing.T) {
	pp := NewPreProcessor()
	if _, err := pp.Process("//@sling:group 0 0 storage_uniform params\n"); err == nil {
		t.Fatal("expected error for missing group arguments")
	}
	if _, err := pp.Process("//@sling:group x 0 storage_uniform params throw_params\n"); err == nil {
		t.Fatal("expected error for non-numeric group index")
	}
}

func TestNewShaderVertex(t *testing.T) {
	s := NewShader("throw_vert", ShaderTypeVertex, throwVertSource)
	if s.EntryPoint() != "vs_main" {
		t.Errorf("entry point: got %q, want vs_main", s.EntryPoint())
	}
	layouts := s.VertexLayouts()
	if len(layouts) != 1 {
		t.Fatalf("vertex layout count: got %d, want 1", len(layouts))
	}
	layout := layouts[0][0]
	if layout.ArrayStride != 16 {
		t.Errorf("array stride: got %d, want 16", layout.ArrayStride)
	}
	if len(layout.Attributes) != 2 {
		t.Fatalf("attribute count: got %d, want 2", len(layout.Attributes))
	}
	if layout.Attributes[0].Format != wgpu.VertexFormatFloat32x2 {
		t.Errorf("position format: got %v", layout.Attributes[0].Format)
	}
	if layout.Attributes[1].Offset != 8 {
		t.Errorf("tex_coord offset: got %d, want 8", layout.Attributes[1].Offset)
	}
}

func TestNewShaderUniformMinBindingSize(t *testing.T) {
	s := NewShader("throw_vert", ShaderTypeVertex, throwVertSource)
	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 1 {
		t.Fatalf("entry count: got %d, want 1", len(desc.Entries))
	}
	entry := desc.Entries[0]
	if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Errorf("buffer type: got %v, want uniform", entry.Buffer.Type)
	}
	if entry.Buffer.MinBindingSize != 48 {
		t.Errorf("ThrowParams min binding size: got %d, want 48", entry.Buffer.MinBindingSize)
	}
	if entry.Visibility != wgpu.ShaderStageVertex {
		t.Errorf("visibility: got %v, want vertex", entry.Visibility)
	}
}

func TestNewShaderFragmentBindings(t *testing.T) {
	s := NewShader("textured_frag", ShaderTypeFragment, texturedFragSource)
	if s.EntryPoint() != "fs_main" {
		t.Errorf("entry point: got %q, want fs_main", s.EntryPoint())
	}
	desc := s.BindGroupLayoutDescriptor(1)
	if len(desc.Entries) != 2 {
		t.Fatalf("entry count: got %d, want 2", len(desc.Entries))
	}
	tex := desc.Entries[0]
	if tex.Texture.SampleType != wgpu.TextureSampleTypeFloat {
		t.Errorf("texture sample type: got %v", tex.Texture.SampleType)
	}
	if tex.Texture.ViewDimension != wgpu.TextureViewDimension2D {
		t.Errorf("texture view dimension: got %v", tex.Texture.ViewDimension)
	}
	samp := desc.Entries[1]
	if samp.Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Errorf("sampler type: got %v", samp.Sampler.Type)
	}
	if s.BindGroupVarName(1, 0) != "item_texture" {
		t.Errorf("var name: got %q", s.BindGroupVarName(1, 0))
	}
	if binding, ok := s.BindGroupFromVarName(1, "item_sampler"); !ok || binding != 1 {
		t.Errorf("binding from var name: got %d, %v", binding, ok)
	}
}

func TestPlacementParamsBindingSize(t *testing.T) {
	source := `//@sling:include placement_params
//@sling:group 0 0 storage_uniform params placement_params
//@sling:include sprite_vertex
@vertex
fn vs_main(in: SpriteVertex) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 0.0, 1.0);
}
`
	s := NewShader("placement_vert", ShaderTypeVertex, source)
	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 1 {
		t.Fatalf("entry count: got %d, want 1", len(desc.Entries))
	}
	if got := desc.Entries[0].Buffer.MinBindingSize; got != 32 {
		t.Errorf("PlacementParams min binding size: got %d, want 32", got)
	}
}

func TestStripComments(t *testing.T) {
	source := "a // line comment\n/* block /* nested */ comment */b\n"
	out := stripComments(source)
	if strings.Contains(out, "comment") {
		t.Errorf("comments not removed: %q", out)
	}
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Errorf("code removed along with comments: %q", out)
	}
}

func TestParseEntryPointMissing(t *testing.T) {
	if got := parseEntryPoint("fn helper() {}", ShaderTypeVertex); got != "" {
		t.Errorf("expected empty entry point, got %q", got)
	}
}
