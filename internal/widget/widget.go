package widget

import "encoding/json"

// Descriptor is one backend-declared widget: a type tag plus an opaque
// payload interpreted by whatever renderer is registered for that tag.
// Descriptors have no identity beyond their content and are not mutated
// after decoding.
type Descriptor struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Renderer turns a widget payload into terminal output. Implementations
// must tolerate payloads that don't match their expected shape and render
// an inline notice instead; a renderer never returns an error.
type Renderer interface {
	Render(data json.RawMessage, width int) string
}

// Factory builds a renderer. Construction is deferred until the first
// Resolve of the tag, so widget types absent from the current payload cost
// nothing at startup.
type Factory func() Renderer
