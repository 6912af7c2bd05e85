// Package vision asks the generator for sustainability observations about a
// photo.
package vision

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/internal/fallback"
	"github.com/jgoulah/envirolink/internal/pipeline"
)

// MaxImageBytes bounds how much of an image is read and forwarded
const MaxImageBytes = 10 << 20

// Analyzer runs image analysis through a pipeline
type Analyzer struct {
	pipeline *pipeline.Pipeline
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(p *pipeline.Pipeline) *Analyzer {
	return &Analyzer{pipeline: p}
}

// Analyze reads an image and returns display text. Read failures are
// returned as errors; everything after that produces text.
func (a *Analyzer) Analyze(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("image is larger than %d bytes", MaxImageBytes)
	}

	mime := DetectImage(data)
	if mime == "" {
		return fallback.VisionResponse(ai.ErrEmptyInput), nil
	}

	return a.pipeline.Run(ctx, pipeline.Job{
		Name:     "vision",
		System:   ai.VisionSystemPrompt,
		Query:    ai.VisionRequest(),
		Image:    &ai.InlineImage{MIMEType: mime, Data: data},
		Options:  ai.VisionOptions,
		Fallback: fallback.VisionResponse,
	}), nil
}

// AnalyzeFile analyzes the image at path
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	return a.Analyze(ctx, f)
}

// DetectImage returns the image MIME type of data, or "" when it is not an image
func DetectImage(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	m := mimetype.Detect(data)
	if !strings.HasPrefix(m.String(), "image/") {
		return ""
	}
	// drop parameters such as charset for svg
	mime, _, _ := strings.Cut(m.String(), ";")
	return mime
}
