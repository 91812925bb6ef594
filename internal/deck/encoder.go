// Package deck encodes a finished mission into a downloadable .pptx dossier.
// The format is built directly as an OOXML package (archive/zip of XML
// parts): a dark title slide, one content slide per outline entry with its
// evidence image or a visible redaction placeholder, speaker notes as
// non-visible annotations, and a closing slide.
package deck

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"

	"bureau/pkg/domain"
)

const (
	emuPerInch = 914400
	// 16:9 wide layout, 13.333 x 7.5 inches.
	slideWidthEMU  = 12192000
	slideHeightEMU = 6858000
	slideWidthIn   = 13.333

	colorBackground = "0A0A0A"
	colorForeground = "E8E6E3"
	colorGreen      = "39FF14"
	colorRed        = "FF3131"
	colorYellow     = "FFE500"
)

// SlideImage is raw image bytes ready for embedding.
type SlideImage struct {
	Data        []byte
	ContentType string // "image/png" or "image/jpeg"
}

// Deck is everything needed to encode a dossier.
type Deck struct {
	Topic   domain.Topic
	Outline domain.SlideOutline
	// Images maps slide number to fetched image bytes. Slides without an
	// entry render the redaction placeholder instead of failing.
	Images map[int]SlideImage
}

// FileName derives the download name from the topic title.
func FileName(topic domain.Topic) string {
	var b strings.Builder
	for _, r := range topic.Title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + "_CLASSIFIED.pptx"
}

// Encode writes the deck as a .pptx package.
func Encode(w io.Writer, d Deck) error {
	if len(d.Outline) == 0 {
		return fmt.Errorf("deck requires a slide outline")
	}

	zw := zip.NewWriter(w)

	// Slide 1 is the title slide, then one per outline entry, then closing.
	slideCount := len(d.Outline) + 2

	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypes(d, slideCount)},
		{"_rels/.rels", rootRels},
		{"docProps/core.xml", coreProps(d.Topic)},
		{"docProps/app.xml", appProps()},
		{"ppt/presentation.xml", presentation(slideCount)},
		{"ppt/_rels/presentation.xml.rels", presentationRels(slideCount)},
		{"ppt/slideMasters/slideMaster1.xml", slideMaster},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayout},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels},
		{"ppt/notesMasters/notesMaster1.xml", notesMaster},
		{"ppt/notesMasters/_rels/notesMaster1.xml.rels", notesMasterRels},
		{"ppt/theme/theme1.xml", theme},
		{"ppt/theme/theme2.xml", theme},
	}
	for _, p := range parts {
		if err := writePart(zw, p.name, []byte(p.data)); err != nil {
			return err
		}
	}

	// Title slide.
	if err := writePart(zw, "ppt/slides/slide1.xml", []byte(titleSlide(d.Topic))); err != nil {
		return err
	}
	if err := writePart(zw, "ppt/slides/_rels/slide1.xml.rels", []byte(slideRels(false, 0, ""))); err != nil {
		return err
	}

	// Content slides with notes and media.
	for i, slide := range d.Outline {
		num := i + 2
		img, hasImg := d.Images[slide.SlideNumber]
		mediaName := ""
		if hasImg {
			mediaName = fmt.Sprintf("image%d.%s", num, imageExt(img.ContentType))
			if err := writePart(zw, "ppt/media/"+mediaName, img.Data); err != nil {
				return err
			}
		}
		if err := writePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", num), []byte(contentSlide(slide, hasImg))); err != nil {
			return err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num), []byte(slideRels(true, num, mediaName))); err != nil {
			return err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", num), []byte(notesSlide(slide.SpeakerNotes))); err != nil {
			return err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", num), []byte(notesSlideRels(num))); err != nil {
			return err
		}
	}

	// Closing slide.
	last := slideCount
	if err := writePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", last), []byte(closingSlide())); err != nil {
		return err
	}
	if err := writePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", last), []byte(slideRels(false, 0, ""))); err != nil {
		return err
	}

	return zw.Close()
}

func writePart(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func imageExt(contentType string) string {
	if strings.Contains(contentType, "jpeg") || strings.Contains(contentType, "jpg") {
		return "jpeg"
	}
	return "png"
}

func contentTypes(d Deck, slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Default Extension="jpeg" ContentType="image/jpeg"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/notesMasters/notesMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme2.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	for i := range d.Outline {
		fmt.Fprintf(&b, `<Override PartName="/ppt/notesSlides/notesSlide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"/>`, i+2)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func presentation(slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:notesMasterIdLst><p:notesMasterId r:id="rId2"/></p:notesMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, 2+i)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, slideWidthEMU, slideHeightEMU)
	b.WriteString(`<p:notesSz cx="6858000" cy="9144000"/>`)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRels(slideCount int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	b.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster" Target="notesMasters/notesMaster1.xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, 2+i, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func slideRels(withNotes bool, slideNum int, mediaName string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
	if withNotes {
		fmt.Fprintf(&b, `<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide%d.xml"/>`, slideNum)
	}
	if mediaName != "" {
		fmt.Fprintf(&b, `<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/%s"/>`, mediaName)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func notesSlideRels(slideNum int) string {
	return xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		fmt.Sprintf(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="../slides/slide%d.xml"/>`, slideNum) +
		`</Relationships>`
}

func coreProps(topic domain.Topic) string {
	now := time.Now().UTC().Format(time.RFC3339)
	return xmlHeader + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escape(topic.Title) + `</dc:title>` +
		`<dc:subject>CLASSIFIED BRIEFING</dc:subject>` +
		`<dc:creator>The Bureau of Unverified Claims</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + now + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + now + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func appProps() string {
	return xmlHeader + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
		`<Application>Bureau Dossier Builder</Application>` +
		`</Properties>`
}
