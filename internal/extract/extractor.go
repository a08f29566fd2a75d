// Package extract turns normalized complaint text into a structured record
// by applying ordered pattern chains per field, first match wins.
package extract

import (
	"strings"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/entity"
)

// Extract applies every field's pattern chain to the normalized text and
// returns the structured record. Pure: the same text always yields a
// byte-identical record, and missing fields become the sentinel rather than
// an error.
func Extract(text string, source constants.SourceKind) entity.ComplaintRecord {
	rec := entity.NewComplaintRecord(source)

	rec.ComplaintID = safe(reComplaintID.firstMatch(text))
	rec.ComplaintDate = safe(reComplaintDate.firstMatch(text))
	rec.IncidentDateTime = safe(reIncidentDateTime.firstMatch(text))
	rec.Mobile = safe(reMobile.firstMatch(text))
	rec.Email = safe(reEmail.firstMatch(text))
	rec.District = safe(reDistrict.firstMatch(text))
	rec.State = safe(reState.firstMatch(text))
	rec.TotalAmountLost = safe(reTotalAmount.firstMatch(text))
	rec.CybercrimeType = safe(cybercrimeType(text))
	rec.FullAddress = safe(fullAddress(text))
	rec.Platform = string(classifyPlatform(text))
	rec.CurrentStatus = string(classifyStatus(text))

	return rec
}

func safe(v string) string {
	if v == "" {
		return constants.NotFound
	}
	return v
}

// cybercrimeType joins the category and sub-category captures with " - ",
// trimmed of leading/trailing hyphens and spaces.
func cybercrimeType(text string) string {
	cat := reCategory.firstMatch(text)
	sub := reSubCategory.firstMatch(text)
	return strings.Trim(cat+" - "+sub, " -")
}

// fullAddress concatenates house, street, village and pincode captures in
// fixed order, dropping empty parts and deduplicating repeated values while
// preserving first-seen order.
func fullAddress(text string) string {
	parts := []string{
		reHouseNo.firstMatch(text),
		reStreet.firstMatch(text),
		reVillage.firstMatch(text),
		rePincode.firstMatch(text),
	}

	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// classifyPlatform checks "UPI" before "BANK"; a form mentioning both is
// classified UPI. The precedence is preserved as observed in the portal
// forms and must not be re-derived.
func classifyPlatform(text string) constants.Platform {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "UPI"):
		return constants.PlatformUPI
	case strings.Contains(upper, "BANK"):
		return constants.PlatformBank
	default:
		return constants.PlatformOther
	}
}

func classifyStatus(text string) constants.ComplaintStatus {
	if strings.Contains(strings.ToUpper(text), "UNDER PROCESS") {
		return constants.StatusUnderProcess
	}
	return constants.StatusRegistered
}
