// marker.go defines the insertion markers recognized by the Wisp shader composer.
// Markers are single-line WGSL comments prefixed with @wisp: that name the points
// where the composer weaves generated curve-following, color-ramp, scale-ramp, and
// orientation code into a host shader. Host sources keep their markers until they
// are composed, so a source can be checked for composability before any weaving
// happens, and a woven source no longer contains them.
package shader

import (
	"fmt"
	"slices"
	"strings"
)

// markerPrefix identifies a Wisp marker within a WGSL comment line. Every marker
// must appear on a line beginning with "//" followed by this prefix.
const markerPrefix = "@wisp:"

// MarkerType identifies the kind of insertion point a marker designates.
// Each type corresponds to a distinct scope in the host shader and receives
// different generated code during composition.
type MarkerType string

const (
	// MarkerTypeSupport designates a module-scope insertion point in a host
	// vertex or fragment shader. The composer replaces it with generated
	// declarations: the particle parameter uniform block, the curve traversal
	// functions, and any optional ramp or orientation helpers the requested
	// feature set needs.
	//
	// Syntax: //@wisp:support
	MarkerTypeSupport MarkerType = "support"

	// MarkerTypeBody designates the per-vertex insertion point inside the host
	// vertex entry function. The generated block reads the particle's id and
	// phase offset, decides whether the particle is alive, and overwrites the
	// local_position and vertex_color variables the host declared above the
	// marker. The host applies its own model and camera transforms afterwards.
	//
	// Syntax: //@wisp:body
	MarkerTypeBody MarkerType = "body"

	// MarkerTypeFragmentBody designates the per-fragment insertion point inside
	// the host fragment entry function. When a color ramp is active the
	// generated block discards fragments whose computed alpha is zero, which is
	// how dead particles are culled without touching the draw call.
	//
	// Syntax: //@wisp:fragment_body
	MarkerTypeFragmentBody MarkerType = "fragment_body"
)

// validMarkerTypes lists every MarkerType the parser accepts. A marker line with
// an unknown type is a composition error, not a silently kept comment.
var validMarkerTypes = []MarkerType{
	MarkerTypeSupport,
	MarkerTypeBody,
	MarkerTypeFragmentBody,
}

// Marker represents a single parsed @wisp: marker from a WGSL source line.
type Marker struct {
	// Type identifies which insertion point this marker designates.
	Type MarkerType

	// Line is the 1-based line number in the host source where the marker was
	// found. Used for error reporting.
	Line int
}

// parseMarker attempts to parse a single line of WGSL source as a @wisp: marker.
// Returns nil with no error for lines that do not contain the marker prefix, a
// populated Marker for valid markers, or an error for lines with the prefix but
// an unknown or malformed type.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Marker: the parsed marker, or nil if the line is not a marker
//   - error: a descriptive error if the marker is malformed
func parseMarker(line string, lineNum int) (*Marker, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, markerPrefix)
	if !ok {
		return nil, nil
	}

	name := strings.TrimSpace(after)
	if name == "" {
		return nil, fmt.Errorf("line %d: empty @wisp marker", lineNum)
	}
	if !slices.Contains(validMarkerTypes, MarkerType(name)) {
		return nil, fmt.Errorf("line %d: unknown @wisp marker type %q", lineNum, name)
	}

	return &Marker{
		Type: MarkerType(name),
		Line: lineNum,
	}, nil
}

// replaceMarker substitutes the first marker line of the given type with the
// replacement text. The marker line is removed entirely and the replacement is
// re-indented to the marker's own leading whitespace, so blocks woven inside a
// function body line up with the host code.
//
// Parameters:
//   - source: the host WGSL source to scan
//   - markerType: which marker to replace
//   - text: the generated WGSL block to insert in the marker's place
//
// Returns:
//   - string: the source with the marker replaced, or the input unchanged
//   - bool: true if a marker of the requested type was found
//   - error: a descriptive error if any @wisp line in the source is malformed
func replaceMarker(source string, markerType MarkerType, text string) (string, bool, error) {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		m, err := parseMarker(line, i+1)
		if err != nil {
			return "", false, err
		}
		if m == nil || m.Type != markerType {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		lines[i] = indentBlock(text, indent)
		return strings.Join(lines, "\n"), true, nil
	}
	return source, false, nil
}

// indentBlock prefixes every non-empty line of text with indent and trims the
// trailing newline so the block drops cleanly into the marker's line slot.
func indentBlock(text, indent string) string {
	text = strings.TrimRight(text, "\n")
	if indent == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}
