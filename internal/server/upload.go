package server

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ncrp-tools/complaints-tracker/internal/entity"
	"github.com/ncrp-tools/complaints-tracker/internal/extract"
)

// uploadRow is one extracted record, or an error marker for a file that could
// not be processed. Embedding flattens the record's portal column names into
// the row object.
type uploadRow struct {
	entity.ComplaintRecord
	Error string `json:"error,omitempty"`
	File  string `json:"file,omitempty"`
}

func errorRow(filename, msg string) uploadRow {
	row := uploadRow{Error: msg, File: filename}
	row.Source = "ERROR"
	return row
}

// handleUpload accepts multipart files under "files" (single "file"/"upload"
// tolerated), stages each one and runs extraction. Every input produces
// exactly one outcome row; a bad file never aborts the batch.
func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		for _, field := range []string{"file", "upload"} {
			if single := form.File[field]; len(single) > 0 {
				files = single
				break
			}
		}
	}
	if len(files) == 0 {
		s.logger.Warn("upload request without files")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	rows := make([]uploadRow, 0, len(files))
	var staged []string
	for _, fh := range files {
		row, pendingName := s.processUpload(c, fh)
		rows = append(rows, row)
		if pendingName != "" {
			staged = append(staged, pendingName)
		}
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows, "files": staged})
}

// processUpload stages one file and extracts its record. The returned pending
// name is empty when staging failed.
func (s *Server) processUpload(c *gin.Context, fh *multipart.FileHeader) (uploadRow, string) {
	src, err := fh.Open()
	if err != nil {
		s.logger.Error("upload open failed", "filename", fh.Filename, "error", err)
		return errorRow(fh.Filename, "failed to read upload: "+err.Error()), ""
	}
	defer func() { _ = src.Close() }()

	pendingName, err := s.staging.Stage(fh.Filename, src)
	if err != nil {
		s.logger.Error("upload stage failed", "filename", fh.Filename, "error", err)
		return errorRow(fh.Filename, "failed to save: "+err.Error()), ""
	}
	s.logger.Info("upload staged", "filename", fh.Filename, "staged_as", pendingName, "size", fh.Size)

	// OCR shells out to tesseract; bound it so a hung engine cannot pin
	// the request until the client gives up.
	ctx := c.Request.Context()
	if s.cfg.OCR.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.OCR.Timeout)
		defer cancel()
	}
	result, err := s.reader.Read(ctx, s.staging.PendingPath(pendingName))
	if err != nil {
		s.logger.Error("upload extract failed", "filename", fh.Filename, "error", err)
		return errorRow(fh.Filename, err.Error()), pendingName
	}

	rec := extract.Extract(result.Text, result.Source)
	rec.SavedFilename = pendingName
	s.logger.Info("upload.extract.ok",
		"filename", fh.Filename,
		"complaint_id", rec.ComplaintID,
		"chars", len(result.Text),
		"elapsed_ms", result.Duration.Milliseconds(),
	)
	return uploadRow{ComplaintRecord: rec}, pendingName
}
