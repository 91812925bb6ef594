package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Headline is a tabloid front-page pairing used by the newspaper image style.
type Headline struct {
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline"`
}

const headlinePromptFmt = `You are a tabloid newspaper headline writer for the New York Post. Generate a sensational, punchy headline (max 8 words) for a fake news story about this conspiracy theory: %q. The story is supposedly supported by this image: %q.

Make it dramatic, shocking, and tabloid-style. Use ALL CAPS. Include a punchy subheadline (10-15 words) that elaborates.

Respond ONLY with JSON in this format:
{
  "headline": "THE MAIN HEADLINE HERE",
  "subheadline": "A longer subheadline that provides more shocking details"
}`

// HeadlineWriter generates tabloid headlines on top of any TextGenerator.
type HeadlineWriter struct {
	generator TextGenerator
}

// NewHeadlineWriter wraps a text generator.
func NewHeadlineWriter(generator TextGenerator) *HeadlineWriter {
	return &HeadlineWriter{generator: generator}
}

// Write produces a headline/subheadline pair for a topic and image description.
func (w *HeadlineWriter) Write(ctx context.Context, topicTitle, imageDescription string) (Headline, error) {
	prompt := fmt.Sprintf(headlinePromptFmt, topicTitle, imageDescription)
	text, err := w.generator.GenerateText(ctx, "", prompt)
	if err != nil {
		return Headline{}, fmt.Errorf("generate headline: %w", err)
	}
	// The model may wrap the JSON in prose; take the outermost object.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Headline{}, fmt.Errorf("no JSON object in headline response")
	}
	var h Headline
	if err := json.Unmarshal([]byte(text[start:end+1]), &h); err != nil {
		return Headline{}, fmt.Errorf("parse headline response: %w", err)
	}
	if h.Headline == "" {
		return Headline{}, fmt.Errorf("empty headline in response")
	}
	return h, nil
}
