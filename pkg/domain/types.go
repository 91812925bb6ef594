package domain

type Difficulty string

const (
	DifficultyBeginner  Difficulty = "Beginner Agent"
	DifficultyOperative Difficulty = "Field Operative"
	DifficultyDeepState Difficulty = "Deep State"
)

type ImageStyle string

const (
	StyleLeakedPhoto  ImageStyle = "leaked-photo"
	StyleNewspaper    ImageStyle = "newspaper"
	StyleDeclassified ImageStyle = "declassified"
	StyleSatellite    ImageStyle = "satellite"
)

// ValidStyle reports whether s is one of the four supported image styles.
func ValidStyle(s ImageStyle) bool {
	switch s {
	case StyleLeakedPhoto, StyleNewspaper, StyleDeclassified, StyleSatellite:
		return true
	}
	return false
}

// Topic is the subject selected once per session. Immutable after selection.
type Topic struct {
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	Teaser     string     `json:"teaser"`
	Absurdity  int        `json:"absurdity"` // 1..5
	Difficulty Difficulty `json:"difficulty"`
}

// Slide is one entry of a generated outline. Slide numbers are 1-based,
// dense, and match position within the outline.
type Slide struct {
	SlideNumber    int      `json:"slide_number"`
	Title          string   `json:"title"`
	TalkingPoints  []string `json:"talking_points"`
	SpeakerNotes   string   `json:"speaker_notes"`
	SuggestedImage string   `json:"suggested_image"`
}

// SlideOutline is always created or replaced as a whole, never slide-by-slide.
type SlideOutline []Slide

// EvidenceImage records one fabricated illustration. At most one entry per
// slide number is kept; regeneration replaces the prior entry.
type EvidenceImage struct {
	SlideNumber int        `json:"slideNumber"`
	ImageURL    string     `json:"imageUrl"`
	Style       ImageStyle `json:"style"`
	Prompt      string     `json:"prompt"`
}

// SessionState aggregates everything a session has produced so far.
// Fields are nil/empty until the corresponding stage completes.
type SessionState struct {
	Topic       *Topic          `json:"topic,omitempty"`
	Outline     SlideOutline    `json:"outline,omitempty"`
	Images      []EvidenceImage `json:"images,omitempty"`
	ExportReady bool            `json:"exportReady"`
}

// ConversationMessage is one turn of the workshop transcript. The transcript
// lives only for the duration of a request; it is never persisted.
type ConversationMessage struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}
