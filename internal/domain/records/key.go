package records

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// RecordFolder is the key prefix for every uploaded medical record.
const RecordFolder = "medical_records"

// ObjectKey builds medical_records/<owner>/<uuid><ext>. The client file name
// only contributes its extension.
func ObjectKey(owner, fileName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(fileName)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return path.Join(RecordFolder, sanitizeSegment(owner), uuid.NewString()+ext)
}

func sanitizeSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "_"
	}
	return s
}
