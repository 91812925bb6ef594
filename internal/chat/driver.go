// Package chat drives one streamed conversation turn against the text
// backend, growing a single assistant message fragment by fragment and
// checking the finished message for an embedded slide outline.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"bureau/internal/outline"
	"bureau/pkg/ai"
	"bureau/pkg/domain"
)

// ErrStreamInFlight is returned when Send is called while a previous stream
// is still running. Fragment buffering is not reentrant, so overlapping
// sends on one driver are rejected rather than interleaved.
var ErrStreamInFlight = errors.New("a stream is already in flight for this conversation")

// SystemPrompt instructs the assistant to act as the Bureau's presentation
// coach and to wrap the finalized outline in a ```json fence.
const SystemPrompt = `You are a top-secret comedy presentation coach working for a shadowy organization known only as "The Bureau of Unverified Claims." Your job is to help agents (users) prepare a devastatingly funny 5-minute conspiracy theory presentation.

The user has selected a conspiracy theory. Your job is to:

1. Help them structure a 5-minute presentation (roughly 5-7 slides).
2. Suggest an opening hook that grabs attention.
3. Build a narrative arc: introduce the "theory," present escalating "evidence," address "skeptics," and deliver a killer closing line.
4. Suggest specific talking points, jokes, rhetorical questions, and dramatic pauses.
5. Recommend what "evidence" images they should generate (fake photos, fake news clippings, fake documents).
6. Coach them on deadpan delivery — the comedy comes from treating the absurd with total seriousness.

Your tone is conspiratorial, witty, and encouraging. You take the conspiracy VERY seriously (wink wink). You address the user as "Agent." You occasionally reference "The Bureau" and act as though this presentation could change the world.

When the user asks to finalize or generate their slide outline, respond with a JSON block wrapped in ` + "```json" + ` tags. The JSON should follow this exact structure:

{
  "slides": [
    {
      "slide_number": 1,
      "title": "Slide title here",
      "talking_points": ["Point 1", "Point 2", "Point 3"],
      "speaker_notes": "What to say during this slide, including delivery tips",
      "suggested_image": "Description of an image to generate for this slide"
    }
  ]
}

IMPORTANT: Keep responses concise and actionable. Get to the funny. Remember: this is for a comedy night, not a TED talk.`

// AutoGeneratePrompt asks for the full outline in one shot, skipping the
// conversational workshop.
const AutoGeneratePrompt = "Generate a complete presentation framework immediately. Create the JSON slide structure now."

// EventType tags driver events.
type EventType int

const (
	// EventMessageUpdated carries the full running assistant message after a
	// new fragment arrived. The message grows monotonically.
	EventMessageUpdated EventType = iota
	// EventOutlineReady carries the outline extracted from the final message.
	EventOutlineReady
	// EventMalformed reports that the final message contained a complete
	// fenced block that failed the parse or shape check.
	EventMalformed
	// EventTransmissionFailed reports a network or backend failure. The
	// caller may resend; no session state has been touched.
	EventTransmissionFailed
	// EventDone marks the end of the turn; no further events follow.
	EventDone
)

// Event is one observable step of a streamed turn.
type Event struct {
	Type    EventType
	Message string
	Outline domain.SlideOutline
	Err     error
}

// Driver streams turns for a single conversation. At most one stream may be
// in flight at a time.
type Driver struct {
	streamer ai.TextStreamer
	inFlight atomic.Bool
}

// NewDriver builds a driver on top of a text streamer.
func NewDriver(streamer ai.TextStreamer) *Driver {
	return &Driver{streamer: streamer}
}

// Send streams one turn. The topic, when non-nil and the transcript holds
// exactly one user message, replaces that message with the mission context
// (first turn of a session). Events arrive on the returned channel, which is
// closed after EventDone. A second Send while one is in flight returns
// ErrStreamInFlight.
func (d *Driver) Send(ctx context.Context, transcript []domain.ConversationMessage, topic *domain.Topic) (<-chan Event, error) {
	if !d.inFlight.CompareAndSwap(false, true) {
		return nil, ErrStreamInFlight
	}

	messages := prepareTranscript(transcript, topic)
	events := make(chan Event, 1)

	go func() {
		defer close(events)
		defer d.inFlight.Store(false)

		emit := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		stream, err := d.streamer.Stream(ctx, SystemPrompt, messages)
		if err != nil {
			emit(Event{Type: EventTransmissionFailed, Err: err})
			emit(Event{Type: EventDone})
			return
		}

		var buf strings.Builder
		for ev := range stream {
			switch {
			case ev.Err != nil:
				emit(Event{Type: EventTransmissionFailed, Err: ev.Err})
				emit(Event{Type: EventDone})
				return
			case ev.Done:
				d.finish(buf.String(), emit)
				return
			case ev.Delta != "":
				buf.WriteString(ev.Delta)
				if !emit(Event{Type: EventMessageUpdated, Message: buf.String()}) {
					return
				}
			}
		}
		// Stream closed without the sentinel. Treat whatever arrived as the
		// final message so a truncated-but-complete outline still lands.
		d.finish(buf.String(), emit)
	}()

	return events, nil
}

func (d *Driver) finish(message string, emit func(Event) bool) {
	res := outline.Extract(message)
	switch res.Status {
	case outline.StatusOK:
		emit(Event{Type: EventOutlineReady, Message: message, Outline: res.Outline})
	case outline.StatusMalformed:
		emit(Event{Type: EventMalformed, Message: message, Err: res.Err})
	case outline.StatusNotReady:
		// Ordinary conversational reply; nothing to extract.
	}
	emit(Event{Type: EventDone, Message: message})
}

func prepareTranscript(transcript []domain.ConversationMessage, topic *domain.Topic) []domain.ConversationMessage {
	out := make([]domain.ConversationMessage, len(transcript))
	copy(out, transcript)
	if topic != nil && len(out) == 1 {
		out[0] = domain.ConversationMessage{
			Role:    "user",
			Content: fmt.Sprintf("Agent, your assigned truth is: %q. Let's build your case. Here's the brief: %s", topic.Title, topic.Teaser),
		}
	}
	return out
}
