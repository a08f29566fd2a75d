package docx

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc(body string, extra map[string]string) *Document {
	parts := map[string][]byte{
		"[Content_Types].xml": []byte(`<Types/>`),
		documentPart:          []byte(`<w:document><w:body>` + body + `</w:body></w:document>`),
	}
	for name, content := range extra {
		parts[name] = []byte(content)
	}
	return &Document{parts: parts}
}

func para(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, r := range runs {
		b.WriteString("<w:r><w:t>" + r + "</w:t></w:r>")
	}
	b.WriteString("</w:p>")
	return b.String()
}

func TestReplaceAllCollapsesSplitRuns(t *testing.T) {
	// token split across two runs, as Word loves to do
	doc := testDoc(para("Dear {{BANK_", "NAME}},"), nil)

	doc.ReplaceAll(map[string]string{"{{BANK_NAME}}": "Hdfc Bank"}, "")

	body := string(doc.parts[documentPart])
	assert.Contains(t, body, `<w:t xml:space="preserve">Dear Hdfc Bank,</w:t>`)
	// collapsed to a single run
	assert.Equal(t, 1, strings.Count(body, "<w:r>"))
}

func TestReplaceAllLeavesUntouchedParagraphs(t *testing.T) {
	original := para("no tokens here")
	doc := testDoc(original, nil)

	doc.ReplaceAll(map[string]string{"{{CSRNO}}": "CR-1"}, "")

	assert.Contains(t, string(doc.parts[documentPart]), original)
}

func TestReplaceAllKeepsParagraphProperties(t *testing.T) {
	body := `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>{{GETDATE}}</w:t></w:r></w:p>`
	doc := testDoc(body, nil)

	doc.ReplaceAll(map[string]string{"{{GETDATE}}": "01-02-2024"}, "")

	out := string(doc.parts[documentPart])
	assert.Contains(t, out, `<w:jc w:val="center"/>`)
	assert.Contains(t, out, "01-02-2024")
}

func TestReplaceAllReflowsNarrativeParagraph(t *testing.T) {
	doc := testDoc(para("Info: {{Complaint Additional Info}}"), nil)
	narrative := "money  was   debited\twithout consent"

	doc.ReplaceAll(map[string]string{"{{Complaint Additional Info}}": narrative}, narrative)

	out := string(doc.parts[documentPart])
	assert.Contains(t, out, "money was debited without consent")
	assert.Contains(t, out, `<w:jc w:val="both"/>`)
	assert.Contains(t, out, `w:line="360"`)
	assert.Contains(t, out, `w:before="120"`)
}

func TestReplaceAllCoversHeadersAndFooters(t *testing.T) {
	doc := testDoc(para("body {{CSRNO}}"), map[string]string{
		"word/header1.xml": `<w:hdr>` + para("hdr {{CSRNO}}") + `</w:hdr>`,
		"word/footer1.xml": `<w:ftr>` + para("ftr {{CSRNO}}") + `</w:ftr>`,
		"word/styles.xml":  `<w:styles>{{CSRNO}}</w:styles>`,
	})

	doc.ReplaceAll(map[string]string{"{{CSRNO}}": "CR-9"}, "")

	assert.Contains(t, string(doc.parts["word/header1.xml"]), "hdr CR-9")
	assert.Contains(t, string(doc.parts["word/footer1.xml"]), "ftr CR-9")
	// non-content parts stay untouched
	assert.Contains(t, string(doc.parts["word/styles.xml"]), "{{CSRNO}}")
}

func TestReplaceAllEscapesSubstitutedText(t *testing.T) {
	doc := testDoc(para("{{COM_NAME}}"), nil)

	doc.ReplaceAll(map[string]string{"{{COM_NAME}}": "A & B <Ltd>"}, "")

	assert.Contains(t, string(doc.parts[documentPart]), "A &amp; B &lt;Ltd&gt;")
}

const letterTable = `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>S.NO</w:t></w:r></w:p></w:tc>` +
	`<w:tc><w:p><w:r><w:t>LAYER</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`

func TestAppendTableRows(t *testing.T) {
	doc := testDoc(letterTable, nil)

	ok := doc.AppendTableRows("S.NO", [][]string{
		{"1", "Layer 1"},
		{"2", "Layer 2"},
	})

	require.True(t, ok)
	body := string(doc.parts[documentPart])
	assert.Equal(t, 3, strings.Count(body, "<w:tr>"))
	assert.Contains(t, body, ">Layer 2</w:t>")
	// rows land inside the table
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(body, "</w:body></w:document>"), "</w:tbl>"))
}

func TestAppendTableRowsNoMatchingTable(t *testing.T) {
	other := `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>NAME</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`
	doc := testDoc(other, nil)
	before := string(doc.parts[documentPart])

	ok := doc.AppendTableRows("S.NO", [][]string{{"1"}})

	assert.False(t, ok)
	assert.Equal(t, before, string(doc.parts[documentPart]))
}

func TestOpenSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tpl.docx")

	doc := testDoc(para("hello {{BANK_NAME}}"), nil)
	require.NoError(t, doc.Save(path))

	reopened, err := Open(path)
	require.NoError(t, err)
	reopened.ReplaceAll(map[string]string{"{{BANK_NAME}}": "Icici Bank"}, "")

	out := filepath.Join(dir, "out.docx")
	require.NoError(t, reopened.Save(out))

	final, err := Open(out)
	require.NoError(t, err)
	assert.Contains(t, string(final.parts[documentPart]), "hello Icici Bank")
}
