package deck

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"bureau/pkg/domain"
)

func testDeck(images map[int]SlideImage) Deck {
	return Deck{
		Topic: domain.Topic{
			ID:     6,
			Title:  "Moon Landing Was Filmed in a Parking Garage",
			Teaser: "Level B2, next to the vending machines.",
		},
		Outline: domain.SlideOutline{
			{SlideNumber: 1, Title: "The Setup", TalkingPoints: []string{"Hook & claim", "Why <them>?"}, SpeakerNotes: "Deadpan. Total seriousness.", SuggestedImage: "garage"},
			{SlideNumber: 2, Title: "The Evidence", TalkingPoints: []string{"Exhibit A"}, SpeakerNotes: "Pause here.", SuggestedImage: "shadow"},
		},
		Images: images,
	}
}

func encodeToZip(t *testing.T, d Deck) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		t.Fatalf("encode: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read package: %v", err)
	}
	return zr
}

func readEntry(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("package is missing %s", name)
	return ""
}

func TestEncodePackageLayout(t *testing.T) {
	png := SlideImage{Data: []byte("\x89PNG fake"), ContentType: "image/png"}
	zr := encodeToZip(t, testDeck(map[int]SlideImage{1: png, 2: png}))

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/notesMasters/notesMaster1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/slide3.xml",
		"ppt/slides/slide4.xml",
		"ppt/notesSlides/notesSlide2.xml",
		"ppt/notesSlides/notesSlide3.xml",
		"ppt/media/image2.png",
		"ppt/media/image3.png",
	} {
		readEntry(t, zr, name)
	}

	pres := readEntry(t, zr, "ppt/presentation.xml")
	if got := strings.Count(pres, "<p:sldId "); got != 4 {
		t.Fatalf("presentation lists %d slides, want 4", got)
	}
}

func TestEncodeTitleAndClosing(t *testing.T) {
	zr := encodeToZip(t, testDeck(nil))
	title := readEntry(t, zr, "ppt/slides/slide1.xml")
	if !strings.Contains(title, "MOON LANDING WAS FILMED IN A PARKING GARAGE") {
		t.Fatalf("title slide missing topic title")
	}
	if !strings.Contains(title, "A CLASSIFIED BRIEFING") {
		t.Fatalf("title slide missing subtitle")
	}
	closing := readEntry(t, zr, "ppt/slides/slide4.xml")
	if !strings.Contains(closing, "THE TRUTH IS OUT THERE") {
		t.Fatalf("closing slide missing sign-off")
	}
}

func TestEncodePlaceholderWhenImageMissing(t *testing.T) {
	png := SlideImage{Data: []byte("\x89PNG fake"), ContentType: "image/png"}
	zr := encodeToZip(t, testDeck(map[int]SlideImage{1: png})) // slide 2 uncovered

	withImage := readEntry(t, zr, "ppt/slides/slide2.xml")
	if !strings.Contains(withImage, "<p:pic>") {
		t.Fatalf("covered slide has no picture")
	}
	without := readEntry(t, zr, "ppt/slides/slide3.xml")
	if strings.Contains(without, "<p:pic>") {
		t.Fatalf("uncovered slide embeds a picture")
	}
	if !strings.Contains(without, "[ IMAGE REDACTED ]") {
		t.Fatalf("uncovered slide missing redaction placeholder")
	}
}

func TestEncodeSpeakerNotesAndEscaping(t *testing.T) {
	zr := encodeToZip(t, testDeck(nil))
	notes := readEntry(t, zr, "ppt/notesSlides/notesSlide2.xml")
	if !strings.Contains(notes, "Deadpan. Total seriousness.") {
		t.Fatalf("speaker notes not embedded")
	}
	slide := readEntry(t, zr, "ppt/slides/slide2.xml")
	if !strings.Contains(slide, "Why &lt;them&gt;?") {
		t.Fatalf("talking point not XML-escaped: %s", slide)
	}
	if !strings.Contains(slide, "Hook &amp; claim") {
		t.Fatalf("ampersand not escaped")
	}
}

func TestEncodeJPEGExtension(t *testing.T) {
	jpg := SlideImage{Data: []byte("\xff\xd8\xff fake"), ContentType: "image/jpeg"}
	zr := encodeToZip(t, testDeck(map[int]SlideImage{1: jpg}))
	readEntry(t, zr, "ppt/media/image2.jpeg")
	rels := readEntry(t, zr, "ppt/slides/_rels/slide2.xml.rels")
	if !strings.Contains(rels, "../media/image2.jpeg") {
		t.Fatalf("slide rels missing jpeg target: %s", rels)
	}
}

func TestEncodeRequiresOutline(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Deck{Topic: domain.Topic{Title: "X"}}); err == nil {
		t.Fatalf("empty outline accepted")
	}
}

func TestFileName(t *testing.T) {
	got := FileName(domain.Topic{Title: "Moon Landing: Garage?"})
	if got != "Moon_Landing__Garage__CLASSIFIED.pptx" {
		t.Fatalf("file name = %q", got)
	}
}
