// Package docx is a minimal WordprocessingML editor for the letter templates:
// open a .docx, substitute placeholder tokens across body, table cells,
// headers and footers, append rows to a marked table, and save. Paragraphs
// whose text changes are rebuilt as a single run (the paragraph is treated as
// a value to replace, not a run list to patch).
package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

const documentPart = "word/document.xml"

var (
	reEditablePart = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)
	reParagraph    = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	reParaProps    = regexp.MustCompile(`(?s)<w:pPr[ >].*?</w:pPr>|<w:pPr/>`)
	reRunText      = regexp.MustCompile(`(?s)<w:t(?: [^>]*)?>(.*?)</w:t>|<w:t/>`)
	reTable        = regexp.MustCompile(`(?s)<w:tbl>.*?</w:tbl>`)
	reTableRow     = regexp.MustCompile(`(?s)<w:tr[ >].*?</w:tr>|<w:tr/>`)
	reTableCell    = regexp.MustCompile(`(?s)<w:tc[ >].*?</w:tc>`)
	reOpenTag      = regexp.MustCompile(`^<w:p(?: [^>]*)?>`)
	reWhitespace   = regexp.MustCompile(`\s+`)
)

// Document is an opened .docx: the full set of zip parts, with the
// WordprocessingML parts editable in place.
type Document struct {
	parts map[string][]byte
	order []string
}

// Open reads a .docx from disk.
func Open(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx %q: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	doc := &Document{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open docx part %q: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read docx part %q: %w", f.Name, err)
		}
		doc.parts[f.Name] = data
		doc.order = append(doc.order, f.Name)
	}
	if _, ok := doc.parts[documentPart]; !ok {
		return nil, fmt.Errorf("%q missing %s", path, documentPart)
	}
	return doc, nil
}

// Save writes the document to path, preserving untouched parts byte for byte.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	for _, name := range d.partNames() {
		w, err := zw.Create(name)
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("create docx part %q: %w", name, err)
		}
		if _, err := w.Write(d.parts[name]); err != nil {
			_ = f.Close()
			return fmt.Errorf("write docx part %q: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (d *Document) partNames() []string {
	if len(d.order) == len(d.parts) {
		return d.order
	}
	names := make([]string, 0, len(d.parts))
	for name := range d.parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// editableParts returns the document body plus every header and footer part.
func (d *Document) editableParts() []string {
	var out []string
	for _, name := range d.partNames() {
		if reEditablePart.MatchString(name) {
			out = append(out, name)
		}
	}
	return out
}

// paragraphText concatenates the text of every run in a paragraph.
func paragraphText(para string) string {
	var b strings.Builder
	for _, m := range reRunText.FindAllStringSubmatch(para, -1) {
		b.WriteString(unescapeXML(m[1]))
	}
	return b.String()
}

// ReplaceAll substitutes every token occurrence across all editable parts.
// A paragraph whose concatenated run text changes is collapsed to a single
// run carrying the substituted text; prior run-level formatting granularity
// is discarded, paragraph properties are kept. When reflowValue is non-empty
// and appears in the substituted text, that paragraph is additionally
// reflowed: whitespace normalized, justified alignment, 1.5 line spacing and
// 6pt spacing before/after, so long narrative text stays legible.
func (d *Document) ReplaceAll(tokens map[string]string, reflowValue string) {
	for _, name := range d.editableParts() {
		d.parts[name] = []byte(reParagraph.ReplaceAllStringFunc(string(d.parts[name]), func(para string) string {
			full := paragraphText(para)
			replaced := full
			for k, v := range tokens {
				replaced = strings.ReplaceAll(replaced, k, v)
			}
			if replaced == full {
				return para
			}
			reflow := reflowValue != "" && strings.Contains(replaced, reflowValue)
			if reflow {
				replaced = strings.TrimSpace(reWhitespace.ReplaceAllString(replaced, " "))
			}
			return rebuildParagraph(para, replaced, reflow)
		}))
	}
}

// rebuildParagraph replaces the paragraph's content model with a single run.
func rebuildParagraph(para, text string, reflow bool) string {
	open := reOpenTag.FindString(para)
	if open == "" {
		return para
	}
	props := reParaProps.FindString(para)
	if reflow {
		props = `<w:pPr><w:spacing w:before="120" w:after="120" w:line="360" w:lineRule="auto"/><w:jc w:val="both"/></w:pPr>`
	}
	return open + props +
		`<w:r><w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r></w:p>`
}

// AppendTableRows appends one row per entry to the first table whose first
// header cell text contains headerMark (case-insensitive). Returns false
// when no table matches; the document is left unchanged in that case.
func (d *Document) AppendTableRows(headerMark string, rows [][]string) bool {
	mark := strings.ToUpper(headerMark)
	body := string(d.parts[documentPart])
	found := false

	body = reTable.ReplaceAllStringFunc(body, func(tbl string) string {
		if found || !tableHeaderContains(tbl, mark) {
			return tbl
		}
		found = true
		var b strings.Builder
		for _, row := range rows {
			b.WriteString("<w:tr>")
			for _, cell := range row {
				b.WriteString(`<w:tc><w:tcPr/><w:p><w:r><w:t xml:space="preserve">`)
				b.WriteString(escapeXML(cell))
				b.WriteString(`</w:t></w:r></w:p></w:tc>`)
			}
			b.WriteString("</w:tr>")
		}
		return strings.TrimSuffix(tbl, "</w:tbl>") + b.String() + "</w:tbl>"
	})

	if found {
		d.parts[documentPart] = []byte(body)
	}
	return found
}

func tableHeaderContains(tbl, mark string) bool {
	firstRow := reTableRow.FindString(tbl)
	if firstRow == "" {
		return false
	}
	firstCell := reTableCell.FindString(firstRow)
	if firstCell == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(paragraphText(firstCell)), mark)
}

func escapeXML(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	).Replace(s)
}

func unescapeXML(s string) string {
	return strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	).Replace(s)
}
