// Package ai wraps the external generative backends. Each client is plain
// REST behind a small interface so the core can be tested against fakes.
package ai

import (
	"context"
	"errors"

	"bureau/pkg/domain"
)

// ErrNotConfigured indicates a required backend credential is absent. It is
// a configuration error: surfaced to the caller as-is, never retried.
var ErrNotConfigured = errors.New("backend credentials not configured")

// StreamEvent is one fragment of a streamed completion. Done marks the
// end-of-stream sentinel; Err reports a mid-stream failure.
type StreamEvent struct {
	Delta string
	Done  bool
	Err   error
}

// TextStreamer streams a chat completion fragment by fragment.
type TextStreamer interface {
	Stream(ctx context.Context, systemPrompt string, transcript []domain.ConversationMessage) (<-chan StreamEvent, error)
}

// TextGenerator produces a complete text response in one call.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ImageResult is a fabricated image reference plus the backend's optional
// rewrite of the prompt.
type ImageResult struct {
	URL           string
	RevisedPrompt string
}

// ImageGenerator fabricates one image for a prompt in a given style.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, style domain.ImageStyle) (ImageResult, error)
}
