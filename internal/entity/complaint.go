package entity

import (
	"time"

	"github.com/ncrp-tools/complaints-tracker/constants"
)

// ComplaintRecord is the canonical structured output of extraction, one per
// source file. Every field is always present; absent data carries the
// constants.NotFound sentinel, never an empty string or null.
//
// JSON tags use the portal's column names so verification payloads from the
// frontend round-trip unchanged.
type ComplaintRecord struct {
	Source           string `json:"Source"`
	ComplaintID      string `json:"Complaint ID"`
	ComplaintDate    string `json:"Complaint Date"`
	IncidentDateTime string `json:"Incident Date & Time"`
	Mobile           string `json:"Mobile"`
	Email            string `json:"Email"`
	FullAddress      string `json:"Full Address"`
	District         string `json:"District"`
	State            string `json:"State"`
	CybercrimeType   string `json:"Cybercrime Type"`
	Platform         string `json:"Platform"`
	TotalAmountLost  string `json:"Total Amount Lost"`
	CurrentStatus    string `json:"Current Status"`

	// SavedFilename is set after the staged upload is promoted; it links
	// the persisted record back to the stored source document.
	SavedFilename string `json:"saved_filename,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// NewComplaintRecord returns a record with every extractable field set to the
// sentinel and the source kind filled in.
func NewComplaintRecord(source constants.SourceKind) ComplaintRecord {
	return ComplaintRecord{
		Source:           string(source),
		ComplaintID:      constants.NotFound,
		ComplaintDate:    constants.NotFound,
		IncidentDateTime: constants.NotFound,
		Mobile:           constants.NotFound,
		Email:            constants.NotFound,
		FullAddress:      constants.NotFound,
		District:         constants.NotFound,
		State:            constants.NotFound,
		CybercrimeType:   constants.NotFound,
		Platform:         string(constants.PlatformOther),
		TotalAmountLost:  constants.NotFound,
		CurrentStatus:    string(constants.StatusRegistered),
	}
}

// Values returns the record's extractable fields in constants.Columns order.
func (r *ComplaintRecord) Values() []string {
	return []string{
		r.Source,
		r.ComplaintID,
		r.ComplaintDate,
		r.IncidentDateTime,
		r.Mobile,
		r.Email,
		r.FullAddress,
		r.District,
		r.State,
		r.CybercrimeType,
		r.Platform,
		r.TotalAmountLost,
		r.CurrentStatus,
	}
}
