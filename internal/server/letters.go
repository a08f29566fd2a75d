package server

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ncrp-tools/complaints-tracker/internal/letters"
)

// handleLetters runs letter generation for an uploaded complaint form and
// transaction table, using the configured template and IFSC data. Each run
// writes into its own directory so concurrent runs cannot collide.
func (s *Server) handleLetters(c *gin.Context) {
	formFile, err := c.FormFile("form")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "form file is required"})
		return
	}
	tableFile, err := c.FormFile("table")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "table file is required"})
		return
	}

	workDir, err := os.MkdirTemp("", "letters-run-")
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	formPath := filepath.Join(workDir, filepath.Base(formFile.Filename))
	if err := c.SaveUploadedFile(formFile, formPath); err != nil {
		s.respondError(c, err)
		return
	}
	tablePath := filepath.Join(workDir, filepath.Base(tableFile.Filename))
	if err := c.SaveUploadedFile(tableFile, tablePath); err != nil {
		s.respondError(c, err)
		return
	}

	runID := uuid.NewString()
	outputDir := filepath.Join(s.cfg.Letters.OutputDir, runID)
	result, err := s.letters.Generate(c.Request.Context(), letters.Request{
		FormPath:     formPath,
		TablePath:    tablePath,
		TemplatePath: s.cfg.Letters.TemplatePath,
		IFSCPath:     s.cfg.Letters.IFSCPath,
		OutputDir:    outputDir,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	files := make([]string, 0, len(result.Generated))
	for _, p := range result.Generated {
		files = append(files, filepath.Base(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":        runID,
		"output_dir":    outputDir,
		"files":         files,
		"groups":        result.Groups,
		"skipped_banks": result.Skipped,
	})
}
