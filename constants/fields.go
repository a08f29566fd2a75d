package constants

// NotFound is the sentinel stored for any complaint field that could not be
// located in the source text. Downstream consumers rely on this exact string
// to tell "parsed but empty" apart from "field missing from schema".
const NotFound = "NOT FOUND"

// Columns holds the canonical complaint columns in export order.
var Columns = []string{
	"Source",
	"Complaint ID",
	"Complaint Date",
	"Incident Date & Time",
	"Mobile",
	"Email",
	"Full Address",
	"District",
	"State",
	"Cybercrime Type",
	"Platform",
	"Total Amount Lost",
	"Current Status",
}

// Platform is the payment surface a complaint was classified under.
type Platform string

const (
	PlatformUPI   Platform = "UPI"
	PlatformBank  Platform = "Bank"
	PlatformOther Platform = "Other"
)

// ComplaintStatus is the canonical status for a complaint record.
type ComplaintStatus string

const (
	StatusRegistered   ComplaintStatus = "Registered"
	StatusUnderProcess ComplaintStatus = "Under Process"
)
