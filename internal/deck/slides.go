package deck

import (
	"fmt"
	"strings"

	"bureau/pkg/domain"
)

func emu(inches float64) int {
	return int(inches * emuPerInch)
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string {
	return escaper.Replace(s)
}

// runStyle describes the text treatment for one paragraph of runs.
type runStyle struct {
	sizePt   int // point size
	bold     bool
	color    string
	font     string
	alphaPct int // 0 = opaque, otherwise remaining opacity percent
	center   bool
	bullet   bool
}

func paragraph(text string, st runStyle) string {
	var b strings.Builder
	b.WriteString("<a:p><a:pPr")
	if st.center {
		b.WriteString(` algn="ctr"`)
	}
	b.WriteString(">")
	if st.bullet {
		b.WriteString(`<a:buChar char="&#8226;"/>`)
	} else {
		b.WriteString("<a:buNone/>")
	}
	b.WriteString("</a:pPr>")
	fmt.Fprintf(&b, `<a:r><a:rPr lang="en-US" sz="%d"`, st.sizePt*100)
	if st.bold {
		b.WriteString(` b="1"`)
	}
	b.WriteString(">")
	if st.alphaPct > 0 {
		fmt.Fprintf(&b, `<a:solidFill><a:srgbClr val="%s"><a:alpha val="%d"/></a:srgbClr></a:solidFill>`, st.color, st.alphaPct*1000)
	} else {
		fmt.Fprintf(&b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, st.color)
	}
	fmt.Fprintf(&b, `<a:latin typeface="%s"/>`, st.font)
	b.WriteString("</a:rPr>")
	fmt.Fprintf(&b, "<a:t>%s</a:t></a:r></a:p>", escape(text))
	return b.String()
}

// textShape emits one free-form text box. rot is in 60000ths of a degree.
func textShape(id int, name string, xIn, yIn, wIn, hIn float64, rot int, paragraphs string) string {
	var b strings.Builder
	b.WriteString("<p:sp>")
	fmt.Fprintf(&b, `<p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, escape(name))
	b.WriteString("<p:spPr><a:xfrm")
	if rot != 0 {
		fmt.Fprintf(&b, ` rot="%d"`, rot)
	}
	fmt.Fprintf(&b, `><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, emu(xIn), emu(yIn), emu(wIn), emu(hIn))
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square" anchor="ctr"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
	b.WriteString(paragraphs)
	b.WriteString("</p:txBody></p:sp>")
	return b.String()
}

func pictureShape(id int, xIn, yIn, wIn, hIn float64) string {
	var b strings.Builder
	b.WriteString("<p:pic>")
	fmt.Fprintf(&b, `<p:nvPicPr><p:cNvPr id="%d" name="Evidence"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`, id)
	b.WriteString(`<p:blipFill><a:blip r:embed="rId3"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, emu(xIn), emu(yIn), emu(wIn), emu(hIn))
	b.WriteString("</p:pic>")
	return b.String()
}

func slideDoc(shapes string) string {
	return xmlHeader +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:cSld>` +
		`<p:bg><p:bgPr><a:solidFill><a:srgbClr val="` + colorBackground + `"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>` +
		`<p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
		shapes +
		`</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`
}

func titleSlide(topic domain.Topic) string {
	var shapes strings.Builder
	// Faint rotated CLASSIFIED stamp behind everything.
	shapes.WriteString(textShape(2, "Watermark", 0.5, 0.5, slideWidthIn-1, 1, 900000,
		paragraph("CLASSIFIED", runStyle{sizePt: 72, bold: true, color: colorRed, font: "Arial", alphaPct: 5, center: true})))
	shapes.WriteString(textShape(3, "Title", 0.5, 2, slideWidthIn-1, 2, 0,
		paragraph(strings.ToUpper(topic.Title), runStyle{sizePt: 44, bold: true, color: colorGreen, font: "Arial", center: true})))
	shapes.WriteString(textShape(4, "Subtitle", 0.5, 4, slideWidthIn-1, 0.5, 0,
		paragraph("A CLASSIFIED BRIEFING", runStyle{sizePt: 18, color: colorYellow, font: "Courier New", center: true})))
	shapes.WriteString(textShape(5, "Teaser", 1, 4.8, slideWidthIn-2, 1, 0,
		paragraph(topic.Teaser, runStyle{sizePt: 14, color: colorForeground, font: "Courier New", alphaPct: 70, center: true})))
	return slideDoc(shapes.String())
}

func contentSlide(slide domain.Slide, hasImage bool) string {
	var shapes strings.Builder
	shapes.WriteString(textShape(2, "Slide Title", 0.5, 0.4, slideWidthIn-1, 0.8, 0,
		paragraph(strings.ToUpper(slide.Title), runStyle{sizePt: 32, bold: true, color: colorGreen, font: "Arial"})))

	bodyWidth := slideWidthIn - 1
	if hasImage {
		bodyWidth = 7.9
		shapes.WriteString(pictureShape(3, 8.9, 1.5, 3.5, 3.5))
	} else {
		// Visible placeholder so a missing image never sinks the export.
		shapes.WriteString(textShape(3, "Redacted", 8.9, 3, 3.5, 1, 0,
			paragraph("[ IMAGE REDACTED ]", runStyle{sizePt: 16, color: colorRed, font: "Courier New", center: true})))
	}

	var points strings.Builder
	for _, p := range slide.TalkingPoints {
		points.WriteString(paragraph(p, runStyle{sizePt: 14, color: colorForeground, font: "Courier New", bullet: true}))
	}
	shapes.WriteString(textShape(4, "Talking Points", 0.5, 1.5, bodyWidth, 4, 0, points.String()))
	return slideDoc(shapes.String())
}

func closingSlide() string {
	var shapes strings.Builder
	shapes.WriteString(textShape(2, "Closing", 0.5, 2.5, slideWidthIn-1, 1.5, 0,
		paragraph("THE TRUTH IS OUT THERE", runStyle{sizePt: 48, bold: true, color: colorYellow, font: "Arial", center: true})))
	shapes.WriteString(textShape(3, "End", 0.5, 4.5, slideWidthIn-1, 0.5, 0,
		paragraph("END OF CLASSIFIED BRIEFING", runStyle{sizePt: 14, color: colorForeground, font: "Courier New", alphaPct: 50, center: true})))
	return slideDoc(shapes.String())
}

func notesSlide(speakerNotes string) string {
	body := paragraph(speakerNotes, runStyle{sizePt: 12, color: "000000", font: "Courier New"})
	return xmlHeader +
		`<p:notes xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
		textShape(2, "Notes", 0.5, 0.5, 6.5, 8, 0, body) +
		`</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`
}
