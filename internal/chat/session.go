// Package chat keeps a sustainability chat transcript and answers each user
// message through the generation pipeline.
package chat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/internal/pipeline"
	"github.com/jgoulah/envirolink/pkg/models"
)

const (
	Greeting = "Hello! I'm your EnviroLink sustainability assistant. " +
		"How can I help you with environmental sustainability today?"

	// OfflineMessage is shown when the connectivity check fails
	OfflineMessage = "You appear to be offline. Connect to the internet to use the chatbot."

	// TroubleMessage is shown when a reply could not be produced at all
	TroubleMessage = "I'm having trouble connecting to my knowledge base. " +
		"Please check your internet connection and try again."
)

// Topics are the suggested questions offered to the user
var Topics = []string{
	"How can I reduce my carbon footprint?",
	"What are the best ways to conserve water at home?",
	"How do I start composting in an apartment?",
	"What renewable energy options are available for homeowners?",
	"How can I reduce single-use plastics in my daily life?",
	"What are the most eco-friendly transportation options?",
	"How can I make my diet more sustainable?",
	"What are simple energy conservation tips for my home?",
	"How do I properly recycle electronics?",
	"What sustainable practices can I implement in my garden?",
}

// ErrNothingToRetry is returned by Retry before any message was sent
var ErrNothingToRetry = errors.New("no previous message to retry")

// Reachability reports whether the generative backend can be reached
type Reachability func(ctx context.Context) bool

// Session is one conversation. It is safe for concurrent use, though calls
// are answered one at a time.
type Session struct {
	pipeline  *pipeline.Pipeline
	reachable Reachability
	now       func() time.Time

	mu        sync.Mutex
	rng       *rand.Rand
	messages  []models.ChatMessage
	lastQuery string
}

// Option configures a Session
type Option func(*Session)

// WithReachability checks connectivity before every request
func WithReachability(fn Reachability) Option {
	return func(s *Session) { s.reachable = fn }
}

// WithSeed makes topic suggestions deterministic
func WithSeed(seed int64) Option {
	return func(s *Session) { s.rng = rand.New(rand.NewSource(seed)) }
}

// NewSession starts a conversation with the greeting as its first message
func NewSession(p *pipeline.Pipeline, opts ...Option) *Session {
	s := &Session{
		pipeline: p,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.messages = []models.ChatMessage{s.message(Greeting, models.SenderBot, false)}
	return s
}

// Send records the user's message and returns the bot's reply
func (s *Session) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ai.ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastQuery = text
	if !s.online(ctx) {
		return s.appendBot(OfflineMessage, true), nil
	}

	s.messages = append(s.messages, s.message(text, models.SenderUser, false))
	return s.answer(ctx, text), nil
}

// Retry drops error messages and answers the last query again
func (s *Session) Retry(ctx context.Context) (models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastQuery == "" {
		return models.ChatMessage{}, ErrNothingToRetry
	}

	kept := s.messages[:0]
	for _, m := range s.messages {
		if !m.IsError {
			kept = append(kept, m)
		}
	}
	s.messages = kept

	if !s.online(ctx) {
		return s.appendBot(OfflineMessage, true), nil
	}

	// an offline attempt never recorded the user's message
	if n := len(s.messages); n == 0 || s.messages[n-1].Sender != models.SenderUser || s.messages[n-1].Text != s.lastQuery {
		s.messages = append(s.messages, s.message(s.lastQuery, models.SenderUser, false))
	}
	return s.answer(ctx, s.lastQuery), nil
}

// Messages returns a copy of the transcript
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Suggestions returns n distinct random topics
func (s *Session) Suggestions(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(Topics) {
		n = len(Topics)
	}
	if n <= 0 {
		return nil
	}

	out := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(Topics))[:n] {
		out = append(out, Topics[i])
	}
	return out
}

func (s *Session) answer(ctx context.Context, query string) models.ChatMessage {
	reply := s.pipeline.Run(ctx, pipeline.Job{
		Name:     "chat",
		System:   ai.ChatSystemPrompt,
		Query:    query,
		Options:  ai.ChatOptions,
		Fallback: s.pipeline.Picker().ChatResponse,
	})
	if ctx.Err() != nil {
		return s.appendBot(TroubleMessage, true)
	}
	return s.appendBot(reply, false)
}

func (s *Session) online(ctx context.Context) bool {
	return s.reachable == nil || s.reachable(ctx)
}

func (s *Session) appendBot(text string, isError bool) models.ChatMessage {
	m := s.message(text, models.SenderBot, isError)
	s.messages = append(s.messages, m)
	return m
}

func (s *Session) message(text string, sender models.Sender, isError bool) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: s.now(),
		IsError:   isError,
	}
}
