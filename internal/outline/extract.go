// Package outline extracts a structured slide outline embedded in assistant
// replies. The assistant is instructed to wrap the payload in a ```json fence
// when asked to finalize; everything else in the reply is ordinary prose.
package outline

import (
	"encoding/json"
	"fmt"
	"strings"

	"bureau/pkg/domain"
)

const (
	openFence  = "```json"
	closeFence = "```"
)

// Status tags an extraction result.
type Status int

const (
	// StatusNotReady means no complete fenced block exists yet. The text may
	// still be growing; this is not an error.
	StatusNotReady Status = iota
	// StatusOK means a fenced block was found and parsed into an outline.
	StatusOK
	// StatusMalformed means a complete fenced block exists but its interior
	// is not valid JSON or does not match the outline shape. Callers treat
	// this as a terminal failure for the current generation attempt.
	StatusMalformed
)

// Result is the tagged outcome of Extract.
type Result struct {
	Status  Status
	Outline domain.SlideOutline
	Err     error
}

type payload struct {
	Slides []domain.Slide `json:"slides"`
}

// Extract scans accumulated text for a fenced JSON slide outline. It is pure
// and idempotent: the same text always yields the same result, and a strict
// prefix of well-formed text yields StatusNotReady, never StatusMalformed.
func Extract(text string) Result {
	start := strings.Index(text, openFence)
	if start < 0 {
		return Result{Status: StatusNotReady}
	}
	body := text[start+len(openFence):]
	end := strings.Index(body, closeFence)
	if end < 0 {
		return Result{Status: StatusNotReady}
	}
	inner := strings.TrimSpace(body[:end])

	var p payload
	if err := json.Unmarshal([]byte(inner), &p); err != nil {
		return malformed(fmt.Errorf("parse outline block: %w", err))
	}
	if err := validate(p.Slides); err != nil {
		return malformed(err)
	}
	return Result{Status: StatusOK, Outline: domain.SlideOutline(p.Slides)}
}

func malformed(err error) Result {
	return Result{Status: StatusMalformed, Err: err}
}

func validate(slides []domain.Slide) error {
	if len(slides) == 0 {
		return fmt.Errorf("outline block has no slides array")
	}
	seen := make(map[int]struct{}, len(slides))
	for i, s := range slides {
		if s.SlideNumber <= 0 {
			return fmt.Errorf("slide %d: missing or non-positive slide_number", i+1)
		}
		if _, dup := seen[s.SlideNumber]; dup {
			return fmt.Errorf("duplicate slide_number %d", s.SlideNumber)
		}
		seen[s.SlideNumber] = struct{}{}
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("slide %d: title is required", s.SlideNumber)
		}
		if len(s.TalkingPoints) == 0 {
			return fmt.Errorf("slide %d: talking_points is required", s.SlideNumber)
		}
	}
	return nil
}
