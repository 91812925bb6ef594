package outline

import (
	"fmt"
	"testing"
)

const wellFormed = "Excellent work, Agent. Here is your briefing structure:\n\n" +
	"```json\n" +
	`{
  "slides": [
    {"slide_number": 1, "title": "The Setup", "talking_points": ["Hook the room", "State the claim"], "speaker_notes": "Deadpan delivery.", "suggested_image": "Grainy parking garage"},
    {"slide_number": 2, "title": "The Evidence", "talking_points": ["Exhibit A"], "speaker_notes": "Pause for effect.", "suggested_image": "Blurry shadow"},
    {"slide_number": 3, "title": "The Cover-Up", "talking_points": ["Follow the money"], "speaker_notes": "Lower your voice.", "suggested_image": "Redacted memo"}
  ]
}` + "\n```\n\nGood luck out there."

func TestExtractFullMessage(t *testing.T) {
	res := Extract(wellFormed)
	if res.Status != StatusOK {
		t.Fatalf("status = %v, err = %v, want StatusOK", res.Status, res.Err)
	}
	if len(res.Outline) != 3 {
		t.Fatalf("outline has %d slides, want 3", len(res.Outline))
	}
	if res.Outline[0].Title != "The Setup" {
		t.Fatalf("first slide title = %q", res.Outline[0].Title)
	}
	if len(res.Outline[0].TalkingPoints) != 2 {
		t.Fatalf("first slide has %d talking points, want 2", len(res.Outline[0].TalkingPoints))
	}
}

func TestExtractPrefixNeverMalformed(t *testing.T) {
	for i := 0; i < len(wellFormed); i++ {
		res := Extract(wellFormed[:i])
		if res.Status == StatusMalformed {
			t.Fatalf("prefix of length %d reported malformed: %v", i, res.Err)
		}
	}
}

func TestExtractIdempotent(t *testing.T) {
	a := Extract(wellFormed)
	b := Extract(wellFormed)
	if a.Status != b.Status || len(a.Outline) != len(b.Outline) {
		t.Fatalf("repeated extraction differs: %v vs %v", a.Status, b.Status)
	}
}

func TestExtractNoFence(t *testing.T) {
	res := Extract("Just chatting, Agent. Nothing to finalize yet.")
	if res.Status != StatusNotReady {
		t.Fatalf("status = %v, want StatusNotReady", res.Status)
	}
}

func TestExtractMalformed(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"slides not an array", "```json\n{\"slides\": \"not an array\"}\n```"},
		{"invalid json", "```json\n{\"slides\": [}\n```"},
		{"empty slides", "```json\n{\"slides\": []}\n```"},
		{"missing title", "```json\n{\"slides\": [{\"slide_number\": 1, \"talking_points\": [\"x\"]}]}\n```"},
		{"duplicate slide number", "```json\n{\"slides\": [" +
			"{\"slide_number\": 1, \"title\": \"A\", \"talking_points\": [\"x\"]}," +
			"{\"slide_number\": 1, \"title\": \"B\", \"talking_points\": [\"y\"]}]}\n```"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Extract(tc.text)
			if res.Status != StatusMalformed {
				t.Fatalf("status = %v, want StatusMalformed", res.Status)
			}
			if res.Err == nil {
				t.Fatalf("malformed result carries no error")
			}
		})
	}
}

func TestExtractSlideCountMatchesPayload(t *testing.T) {
	for _, n := range []int{1, 5, 7} {
		text := "```json\n{\"slides\": ["
		for i := 1; i <= n; i++ {
			if i > 1 {
				text += ","
			}
			text += fmt.Sprintf(`{"slide_number": %d, "title": "Slide %d", "talking_points": ["p"], "speaker_notes": "n", "suggested_image": "img"}`, i, i)
		}
		text += "]}\n```"
		res := Extract(text)
		if res.Status != StatusOK {
			t.Fatalf("n=%d: status = %v, err = %v", n, res.Status, res.Err)
		}
		if len(res.Outline) != n {
			t.Fatalf("n=%d: got %d slides", n, len(res.Outline))
		}
	}
}
