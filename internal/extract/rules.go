package extract

import (
	"regexp"

	"github.com/ncrp-tools/complaints-tracker/internal/textnorm"
)

// patternChain is an ordered list of alternatives for one field. Evaluation
// short-circuits on the first pattern that matches; the order encodes
// precedence (labeled match first, bare fallback last) and must not be
// reordered.
type patternChain []*regexp.Regexp

func chain(patterns ...string) patternChain {
	out := make(patternChain, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// firstMatch returns the normalized first-winning value: the first capture
// group when the pattern has one, the whole match otherwise. Empty string
// means no alternative matched.
func (c patternChain) firstMatch(text string) string {
	for _, re := range c {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if re.NumSubexp() > 0 {
			return textnorm.Normalize(m[1])
		}
		return textnorm.Normalize(m[0])
	}
	return ""
}

var (
	reComplaintID = chain(
		`(?i)Acknowledgement Number\s*[:\-]?\s*(\d+)`,
		`(?i)Complaint ID\s*[:\-]?\s*(\d+)`,
		`\b\d{10,}\b`,
	)

	// Day and month may contain stray spaces from OCR noise.
	reComplaintDate = chain(
		`(?i)Complaint Date\s*[:\-]?\s*([0-9 ]{1,2}/[0-9 ]{1,2}/[0-9]{4})`,
	)

	reIncidentDateTime = chain(
		`(?i)Incident Date/Time\s*[:\-]?\s*([0-9 ]{1,2}/[0-9 ]{1,2}/[0-9]{4}\s+[0-9 ]{1,2}\s*:\s*[0-9 ]{1,2}\s*:\s*[0-9 ]{1,2}\s*[APMapm]{2})`,
		`(?i)Incident Date\s*[:\-]?\s*([0-9 ]{1,2}/[0-9 ]{1,2}/[0-9]{4})`,
	)

	reMobile = chain(
		`(?i)Mobile\s*[:\-]?\s*(\d{9,10})`,
		`\b\d{9,10}\b`,
	)

	reEmail = chain(
		`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	)

	reDistrict = chain(
		`(?i)District\s*[:\-]?\s*([A-Za-z ]+)`,
	)

	reState = chain(
		`(?i)State\s*[:\-]?\s*([A-Za-z ]+)`,
	)

	reTotalAmount = chain(
		`(?i)Total Fraudulent Amount.*?:\s*([\d,.]+)`,
		`(?i)Total Amount.*?:\s*([\d,.]+)`,
	)

	reCategory    = chain(`(?i)Category of complaint\s*(.+?)\sSub`)
	reSubCategory = chain(`(?i)Sub Category of Complaint\s*(.+?)\s`)

	// Address captures run until the next address label so multi-word
	// values ("MG Road") survive; colons are excluded from the charset so
	// an empty value cannot swallow the following label.
	reHouseNo = chain(`(?i)House No\s*[:\-]?\s*([A-Za-z0-9\- ]+?)(?:\s+Street Name|\s+Village/Town|\s+Pincode|\s+District|$)`)
	reStreet  = chain(`(?i)Street Name\s*[:\-]?\s*([A-Za-z0-9\- ]+?)(?:\s+Village/Town|\s+Pincode|\s+District|$)`)
	reVillage = chain(`(?i)Village/Town\s*[:\-]?\s*([A-Za-z0-9\- ]+?)(?:\s+Pincode|\s+District|$)`)
	rePincode = chain(`(?i)Pincode\s*[:\-]?\s*(\d+)`)
)
