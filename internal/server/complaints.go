package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ncrp-tools/complaints-tracker/internal/entity"
)

const defaultComplaintsLimit = 1000

// complaintView renames the stored columns to the identifiers the frontend
// table binds to.
type complaintView struct {
	ID                string `json:"id"`
	ComplaintDate     string `json:"complaintDate"`
	IncidentDateTime  string `json:"incidentDateTime"`
	MobileNumber      string `json:"mobileNumber"`
	EmailID           string `json:"emailId"`
	FullAddress       string `json:"fullAddress"`
	DistrictState     string `json:"districtState"`
	CybercrimeType    string `json:"cybercrimeType"`
	PlatformInvolved  string `json:"platformInvolved"`
	TotalAmountLoss   string `json:"totalAmountLoss"`
	CurrentStatus     string `json:"currentStatus"`
	ProcessedDateTime string `json:"processedDateTime,omitempty"`
	SavedFilename     string `json:"savedFilename,omitempty"`
}

func (s *Server) handleComplaints(c *gin.Context) {
	limit := defaultComplaintsLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= defaultComplaintsLimit {
			limit = n
		}
	}

	records, err := s.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}

	views := make([]complaintView, 0, len(records))
	for _, rec := range records {
		views = append(views, s.viewOf(rec))
	}
	c.JSON(http.StatusOK, gin.H{"rows": views})
}

func (s *Server) viewOf(rec *entity.ComplaintRecord) complaintView {
	districtState := rec.District
	if rec.State != "" {
		districtState += ", " + rec.State
	}

	savedFilename := rec.SavedFilename
	if savedFilename == "" {
		if name, ok := s.staging.Lookup(rec.ComplaintID); ok {
			savedFilename = name
		}
	}

	view := complaintView{
		ID:               rec.ComplaintID,
		ComplaintDate:    rec.ComplaintDate,
		IncidentDateTime: rec.IncidentDateTime,
		MobileNumber:     rec.Mobile,
		EmailID:          rec.Email,
		FullAddress:      rec.FullAddress,
		DistrictState:    districtState,
		CybercrimeType:   rec.CybercrimeType,
		PlatformInvolved: rec.Platform,
		TotalAmountLoss:  rec.TotalAmountLost,
		CurrentStatus:    rec.CurrentStatus,
		SavedFilename:    savedFilename,
	}
	if !rec.CreatedAt.IsZero() {
		view.ProcessedDateTime = rec.CreatedAt.Format(time.RFC3339)
	}
	return view
}
