package letters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeFilename keeps letters, digits and "-_.()"; runs of spaces become
// a single underscore, everything else is dropped.
func SanitizeFilename(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r == ' ':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == '(', r == ')':
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	return b.String()
}

// LetterFilename derives the deterministic output name for one bank group.
func LetterFilename(bankName, csrNo string) string {
	csr := strings.ReplaceAll(csrNo, "/", "-")
	return fmt.Sprintf("%s__CSR_%s.docx", SanitizeFilename(bankName), SanitizeFilename(csr))
}

// ResolveCollisionFreeName returns name if it is free in dir, otherwise the
// first "<base>_<n><ext>" that is. Deterministic; callers wanting a hard
// guarantee against concurrent writers should use a request-unique dir.
func ResolveCollisionFreeName(dir, name string) string {
	if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}
