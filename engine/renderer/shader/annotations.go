// annotations.go defines the annotation types, argument constants, and parser for the
// sling WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @sling: that drive automatic struct injection, bind group declaration, and resource
// provider registration. The parsed results are stored as Annotation values and consumed
// by the PreProcessor and Overlay to wire GPU resources without manual low-level plumbing.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies a sling annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@sling:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
// Each type corresponds to a distinct pre-processor action and produces different
// fields on the resulting Annotation struct.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL snippet (a struct definition
	// or a shared helper function) into the shader at the annotation site. The
	// snippet source is embedded from a .wgsl asset file. This annotation does not
	// produce a declaration and is consumed entirely during pre-processing.
	//
	// Syntax: //@sling:include <key>
	//
	// Examples:
	//   //@sling:include throw_params
	//   //@sling:include rotate
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list. The declaration
	// carries the group index, binding index, and the resolved struct type, enabling the
	// Overlay to semantically match bindings to resource providers without string lookups.
	//
	// Syntax: //@sling:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@sling:group 0 0 storage_uniform params throw_params
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration remains hand-written
	// in the shader source directly below the annotation. This is used for bindings that
	// contain raw WGSL types (textures, samplers) which have no corresponding registered
	// struct in the pre-processor's struct registry.
	//
	// An optional binding role can be appended after the provider identity to declare the
	// semantic purpose of an individual binding within a multi-binding provider group.
	//
	// Syntax:
	//   //@sling:provider <group> <binding> <provider_identity>
	//   //@sling:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@sling:provider 1 0 item item_texture
	//   //@sling:provider 0 0 params
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @sling: annotation from a WGSL shader source line.
// It carries the annotation type, its arguments, the source line number, and optional
// group/binding indices. Annotations of type AnnotationTypeBindingGroup and
// AnnotationTypeProvider are appended to the PreProcessor's declarations list for
// consumption by the Overlay during resource wiring.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "throw_params")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "item"), [1] = binding role (optional, e.g. "item_texture")
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
// Arguments fall into four categories: struct type keys (used with include and group),
// function snippet keys (include only), address space identifiers (used with group),
// and provider identity keys (used with provider).
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL struct types. They can appear in @sling:include annotations
// (to inject the struct source) and in @sling:group annotations (as the type field).
// Each maps to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgThrowParams identifies the ThrowParams uniform struct.
	// Source: engine/item/assets/throw_params.wgsl
	AnnotationArgThrowParams AnnotationArg = "throw_params"

	// AnnotationArgPlacementParams identifies the PlacementParams uniform struct.
	// Source: engine/item/assets/placement_params.wgsl
	AnnotationArgPlacementParams AnnotationArg = "placement_params"

	// annotationArgSpriteVertex identifies the SpriteVertex input struct for item quads.
	// Source: engine/item/assets/sprite_vertex.wgsl
	annotationArgSpriteVertex AnnotationArg = "sprite_vertex"
)

// ── Function snippet arguments ─────────────────────────────────────────────────
// These identify shared WGSL helper functions. They are include-only: they inject
// a function definition and carry no layout, so they cannot type a @sling:group
// declaration.

const (
	// annotationArgRotate identifies the 2D rotation helper shared by the
	// vertex shaders. Source: engine/item/assets/rotate.wgsl
	annotationArgRotate AnnotationArg = "rotate"
)

// ── Address space arguments ────────────────────────────────────────────────────
// These specify the WGSL variable address space in @sling:group annotations.
// They map to WGSL var<> declarations.

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These identify which Overlay-level resource provider owns a bind group. Used in
// @sling:provider annotations and matched by the Overlay's draw call setup logic
// to wire the correct BindGroupProvider for each group.

const (
	// AnnotationArgParams identifies the per-item uniform provider (throw or placement parameters).
	AnnotationArgParams AnnotationArg = "params"

	// AnnotationArgItem identifies the item provider (the item's texture and sampler bindings).
	AnnotationArgItem AnnotationArg = "item"
)

// ── Item binding role arguments ────────────────────────────────────────────────
// These qualify individual bindings within an item provider group. They appear as
// the optional fourth argument of an @sling:provider annotation when the provider
// identity is "item", telling the overlay which resource each binding fulfils
// without relying on variable-name string matching.

const (
	// AnnotationArgItemTexture identifies the item's color texture binding.
	AnnotationArgItemTexture AnnotationArg = "item_texture"

	// AnnotationArgItemSampler identifies the sampler paired with the item texture.
	AnnotationArgItemSampler AnnotationArg = "item_sampler"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @sling:group annotations. Each entry must have a corresponding
// registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgThrowParams,
	AnnotationArgPlacementParams,
	annotationArgSpriteVertex,
}

// validIncludeArgs lists all AnnotationArg values that are accepted in
// @sling:include annotations: every struct type plus the function snippets.
var validIncludeArgs = []AnnotationArg{
	AnnotationArgThrowParams,
	AnnotationArgPlacementParams,
	annotationArgSpriteVertex,
	annotationArgRotate,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @sling:group annotations. Each maps to a WGSL var<> declaration.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
}

// validProviderIdentities lists all AnnotationArg values that are accepted as
// provider identity arguments in @sling:provider annotations. Each maps to an
// Overlay-level resource provider used during draw call setup wiring.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgParams,
	AnnotationArgItem,
}

// validBindingRoles lists all AnnotationArg values that are accepted as binding
// role qualifiers in @sling:provider annotations. These identify the semantic
// purpose of individual bindings within an item provider group.
var validBindingRoles = []AnnotationArg{
	AnnotationArgItemTexture,
	AnnotationArgItemSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as a @sling: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @sling annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @sling include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validIncludeArgs, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown include key %q in @sling include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @sling group annotation requires exactly five arguments (group number, binding number, address space, var name, struct type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @sling group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @sling group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @sling group annotation", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @sling group annotation", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @sling provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @sling provider annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @sling provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @sling provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @sling annotation type %q", lineNum, args[0])
	}
}
