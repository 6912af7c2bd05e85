// Package pipeline runs a prompt through a generator and always produces
// display-ready text.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/internal/fallback"
	"github.com/jgoulah/envirolink/internal/plaintext"
)

// Cache stores generated text by request fingerprint
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Job is one generation request
type Job struct {
	Name      string // used in logs, e.g. "energy"
	System    string
	Summary   string
	Query     string
	Image     *ai.InlineImage
	Options   ai.GenerationOptions
	Cacheable bool

	// Validate reports whether generated text is usable. Only usable text is
	// cached. Nil accepts any text that is non-empty after normalizing.
	Validate func(text string) error

	// Fallback produces the response when generation fails. Nil means a
	// random sustainability tip.
	Fallback func(err error) string
}

// Pipeline composes prompt assembly, generation, caching and fallback
type Pipeline struct {
	gen    ai.Generator
	cache  Cache
	picker *fallback.Picker
	log    zerolog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithCache enables caching of text-only cacheable jobs
func WithCache(c Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithPicker sets the tip picker used by the default fallback
func WithPicker(picker *fallback.Picker) Option {
	return func(p *Pipeline) { p.picker = picker }
}

// New creates a pipeline around gen
func New(gen ai.Generator, log zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:    gen,
		picker: fallback.NewPicker(time.Now().UnixNano()),
		log:    log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Picker returns the tip picker shared by this pipeline's fallbacks
func (p *Pipeline) Picker() *fallback.Picker {
	return p.picker
}

// Complete assembles the prompt and returns the raw generated text
func (p *Pipeline) Complete(ctx context.Context, job Job) (string, error) {
	parts := ai.Assemble(job.System, job.Summary, job.Query)
	if job.Image != nil {
		// image goes right before the user's request
		last := parts[len(parts)-1]
		parts = append(parts[:len(parts)-1], ai.Part{Image: job.Image}, last)
	}
	req := ai.Request{Parts: parts, Options: job.Options}

	useCache := p.cache != nil && job.Cacheable && job.Image == nil
	var key string
	if useCache {
		key = fingerprint(job)
		cached, hit, err := p.cache.Get(ctx, key)
		if err != nil {
			p.log.Warn().Err(err).Str("job", job.Name).Msg("cache lookup failed")
		}
		if hit {
			p.log.Debug().Str("job", job.Name).Msg("cache hit")
			return cached, nil
		}
	}

	start := time.Now()
	text, err := p.gen.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	p.log.Debug().
		Str("job", job.Name).
		Dur("elapsed", time.Since(start)).
		Int("chars", len(text)).
		Msg("generated")

	if useCache {
		if err := validate(job, text); err != nil {
			p.log.Debug().Err(err).Str("job", job.Name).Msg("response not cached")
		} else if err := p.cache.Set(ctx, key, text); err != nil {
			p.log.Warn().Err(err).Str("job", job.Name).Msg("cache store failed")
		}
	}

	return text, nil
}

// Run completes the job and normalizes the result to plain text. Any failure
// is logged and replaced by the job's fallback, so Run always returns text.
func (p *Pipeline) Run(ctx context.Context, job Job) string {
	text, err := p.Complete(ctx, job)
	if err == nil {
		text = plaintext.Normalize(text)
		if strings.TrimSpace(text) != "" {
			return text
		}
		err = &ai.Error{Kind: ai.ErrMalformedResponse, Message: "response was empty after normalizing"}
	}

	p.log.Warn().
		Err(err).
		Str("job", job.Name).
		Str("kind", ai.KindOf(err)).
		Msg("generation failed, using fallback")

	return p.Fallback(job, err)
}

// Fallback returns the job's fallback text for err
func (p *Pipeline) Fallback(job Job, err error) string {
	if job.Fallback != nil {
		if text := job.Fallback(err); text != "" {
			return text
		}
	}
	return p.picker.Tip()
}

func validate(job Job, text string) error {
	if job.Validate != nil {
		return job.Validate(text)
	}
	if strings.TrimSpace(plaintext.Normalize(text)) == "" {
		return &ai.Error{Kind: ai.ErrMalformedResponse, Message: "response was empty after normalizing"}
	}
	return nil
}

func fingerprint(job Job) string {
	data, _ := json.Marshal(struct {
		System, Summary, Query string
		Options                ai.GenerationOptions
	}{job.System, job.Summary, job.Query, job.Options})
	sum := sha256.Sum256(data)
	return job.Name + ":" + hex.EncodeToString(sum[:])
}
