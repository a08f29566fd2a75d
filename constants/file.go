package constants

import "strings"

// SourceKind identifies how a document's text was obtained.
type SourceKind string

const (
	PDF   SourceKind = "PDF"
	IMAGE SourceKind = "IMAGE"
)

// AllowedExtensions holds the default allowed file extensions for complaint ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its source kind.
// Unknown extensions map to the empty kind.
func MapExtToFormat(ext string) SourceKind {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png":
		return IMAGE
	default:
		return ""
	}
}
