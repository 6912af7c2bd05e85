package ai

import "context"

// InlineImage is raw image data sent alongside a text prompt
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Part is one ordered element of a prompt: either text or an image
type Part struct {
	Text  string
	Image *InlineImage
}

// TextPart builds a text-only part
func TextPart(s string) Part {
	return Part{Text: s}
}

// ImagePart builds an image part
func ImagePart(mimeType string, data []byte) Part {
	return Part{Image: &InlineImage{MIMEType: mimeType, Data: data}}
}

// GenerationOptions tunes a single generation request
type GenerationOptions struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// Request is an assembled prompt ready to be sent to a provider
type Request struct {
	Parts   []Part
	Options GenerationOptions
}

// HasImage reports whether any part carries image data
func (r Request) HasImage() bool {
	for _, p := range r.Parts {
		if p.Image != nil {
			return true
		}
	}
	return false
}

// Generator performs one request/response exchange with a generative model.
// Implementations never retry.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
