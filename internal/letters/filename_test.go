package letters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"State Bank of India", "State_Bank_of_India"},
		{"CR/2024/001", "CR2024001"},
		{"a  b", "a_b"},
		{"ok-name_v1.2(final)", "ok-name_v1.2(final)"},
		{"weird*chars?here", "weirdcharshere"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestLetterFilename(t *testing.T) {
	name := LetterFilename("State Bank of India", "CR/2024/001")
	assert.Equal(t, "State_Bank_of_India__CSR_CR-2024-001.docx", name)
	assert.NotContains(t, name, "/")
	// bank and CSR remain recoverable
	parts := strings.SplitN(name, "__CSR_", 2)
	assert.Equal(t, "State_Bank_of_India", parts[0])
	assert.Equal(t, "CR-2024-001.docx", parts[1])
}

func TestResolveCollisionFreeName(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "letter.docx", ResolveCollisionFreeName(dir, "letter.docx"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "letter.docx"), []byte("x"), 0o644))
	assert.Equal(t, "letter_1.docx", ResolveCollisionFreeName(dir, "letter.docx"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "letter_1.docx"), []byte("x"), 0o644))
	assert.Equal(t, "letter_2.docx", ResolveCollisionFreeName(dir, "letter.docx"))
}
