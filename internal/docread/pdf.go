package docread

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/textnorm"
)

// readPDF extracts the text of every page in order and normalizes it.
// Pages that yield no text are skipped rather than failing the document.
func (r *Reader) readPDF(path string) (Result, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		r.logger.Error("pdf open failed", "path", path, "error", err)
		return Result{Source: constants.PDF},
			common.NewAppError("PDF_OPEN", "cannot open PDF", common.ErrUnreadableInput)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			r.logger.Warn("pdf close failed", "path", path, "error", cerr)
		}
	}()

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, err := page.GetPlainText(nil)
		if err != nil {
			r.logger.Warn("pdf page text failed", "path", path, "page", i, "error", err)
			continue
		}
		if txt == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(txt)
	}

	return Result{
		Text:   textnorm.Normalize(b.String()),
		Source: constants.PDF,
		Pages:  pages,
	}, nil
}
