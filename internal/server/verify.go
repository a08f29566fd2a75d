package server

import (
	_ "embed"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ncrp-tools/complaints-tracker/internal/entity"
)

//go:embed verify_schema.json
var verifySchemaJSON string

var verifySchema = jsonschema.MustCompileString("verify_schema.json", verifySchemaJSON)

type verifyRequest struct {
	Action string                   `json:"action"`
	Rows   []entity.ComplaintRecord `json:"rows"`
}

// rowOutcome reports the fate of one submitted row.
type rowOutcome struct {
	Index  int                    `json:"index"`
	Row    entity.ComplaintRecord `json:"row"`
	Reason string                 `json:"reason,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// handleVerify applies the operator's decision on previously extracted rows.
// "reject" discards the staged files; "save" promotes each file, inserts the
// row unless its complaint id already exists, and appends saved rows to the
// XLSX ledger. Row failures are reported, never fatal for the batch.
func (s *Server) handleVerify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := verifySchema.Validate(doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req verifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	switch req.Action {
	case "reject":
		for _, row := range req.Rows {
			if row.SavedFilename == "" {
				continue
			}
			if err := s.staging.Discard(row.SavedFilename); err != nil {
				s.logger.Warn("discard staged file failed",
					"filename", row.SavedFilename, "error", err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "rejected", "message": "Rows rejected by user"})
	case "save":
		s.saveRows(c, req.Rows)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

func (s *Server) saveRows(c *gin.Context, rows []entity.ComplaintRecord) {
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no rows to save"})
		return
	}

	ctx := c.Request.Context()
	saved := make([]rowOutcome, 0, len(rows))
	failed := []rowOutcome{}
	skipped := []rowOutcome{}
	var savedRecords []*entity.ComplaintRecord

	for i := range rows {
		row := rows[i]
		if row.SavedFilename != "" {
			final, err := s.staging.Promote(row.SavedFilename, row.ComplaintID)
			if err != nil {
				s.logger.Warn("promote staged file failed",
					"filename", row.SavedFilename, "error", err)
			} else {
				row.SavedFilename = final
			}
		}

		inserted, err := s.repo.InsertIfAbsent(ctx, &row)
		switch {
		case err != nil:
			s.logger.Error("save row failed", "index", i, "error", err)
			failed = append(failed, rowOutcome{Index: i, Row: row, Error: err.Error()})
		case !inserted:
			skipped = append(skipped, rowOutcome{Index: i, Row: row, Reason: "duplicate complaint_id"})
		default:
			saved = append(saved, rowOutcome{Index: i, Row: row})
			savedRecords = append(savedRecords, &row)
		}
	}

	var excelInfo gin.H
	var excelErrors []string
	if len(savedRecords) > 0 {
		path, err := s.ledger.Append(savedRecords)
		if err != nil {
			s.logger.Error("ledger append failed", "error", err)
			excelErrors = append(excelErrors, err.Error())
		} else {
			excelInfo = gin.H{"path": path, "appended_rows": len(savedRecords)}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"saved_count":   len(saved),
		"failed_count":  len(failed),
		"failed":        failed,
		"skipped_count": len(skipped),
		"skipped":       skipped,
		"excel":         excelInfo,
		"excel_errors":  excelErrors,
	})
}
