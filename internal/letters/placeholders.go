package letters

import (
	"regexp"
	"strings"

	"github.com/ncrp-tools/complaints-tracker/internal/textnorm"
)

// Placeholder tokens embedded in the letter template.
const (
	TokenNCRPNo          = "{{NCRPNO}}"
	TokenCSRNo           = "{{CSRNO}}"
	TokenAdditionalInfo  = "{{Complaint Additional Info}}"
	TokenComplainant     = "{{COM_NAME}}"
	TokenAccountNo       = "{{COM_AC_NO}}"
	TokenComplainantBank = "{{COM_BANK}}"
	TokenTotalFraud      = "{{TOTAL_FRAUD_AMOUNT}}"
	TokenBankName        = "{{BANK_NAME}}"
	TokenGenerationDate  = "{{GETDATE}}"
)

// placeholderMissing is substituted when a token's value cannot be located
// in the source form.
const placeholderMissing = "N/A"

var (
	reAckNo      = regexp.MustCompile(`(?i)Acknowledgement\s*No\.?\s*[:\-]?\s*(\d{5,20})`)
	reCSRNo      = regexp.MustCompile(`(?i)(?:FIR|Crime|CSR|Cr\.?)\s*No[:\-\s]*([A-Za-z0-9/ \-]+)`)
	reAdditional = regexp.MustCompile(`(?i)Complaint Additional Info\s*(.*?)\s*(?:Total Fraudulent Amount|$)`)
	reComName    = regexp.MustCompile(`(?i)Complainant\s*Name[:\s]+([A-Za-z .']{1,100})`)
	reAccountRun = regexp.MustCompile(`\b\d{10,20}\b`)
	reBankPhrase = regexp.MustCompile(`\b([A-Z][A-Za-z ]+Bank)\b`)
	reFraudTotal = regexp.MustCompile(`(?i)Total\s*Fraudulent\s*Amount\s*reported\s*by\s*complainant\s*[-:]?\s*[:\-]?\s*([\d,]+\.\d{2}|\d[\d,]*)`)
)

// ExtractPlaceholders pulls the letter-specific tokens out of the source
// form's normalized text. Every token is always present; N/A marks values
// the heuristics could not locate.
func ExtractPlaceholders(text string) map[string]string {
	data := map[string]string{
		TokenNCRPNo:          first(reAckNo, text),
		TokenCSRNo:           first(reCSRNo, text),
		TokenAdditionalInfo:  first(reAdditional, text),
		TokenComplainant:     first(reComName, text),
		TokenAccountNo:       firstAccountNumber(text),
		TokenComplainantBank: mostFrequentBank(text),
		TokenTotalFraud:      first(reFraudTotal, text),
	}
	for k, v := range data {
		if v == "" {
			data[k] = placeholderMissing
		}
	}
	return data
}

func first(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return textnorm.Normalize(m[1])
}

// firstAccountNumber returns the first 10-20 digit run in the text.
func firstAccountNumber(text string) string {
	return reAccountRun.FindString(text)
}

// mostFrequentBank returns the most common "<Word ...> Bank" phrase,
// first-seen order breaking ties.
func mostFrequentBank(text string) string {
	counts := make(map[string]int)
	var order []string
	for _, m := range reBankPhrase.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}
	best := ""
	for _, name := range order {
		if best == "" || counts[name] > counts[best] {
			best = name
		}
	}
	return best
}
