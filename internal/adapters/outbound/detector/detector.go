package detector

import (
	"path/filepath"
	"strings"

	"github.com/abdidvp/dataval/internal/domain"
)

var kindsByExt = map[string]domain.Kind{
	".xml":  domain.KindXML,
	".json": domain.KindJSON,
	".csv":  domain.KindCSV,
}

// ExtensionDetector implements domain.KindDetector. Classification uses the
// file extension only; content is never read.
type ExtensionDetector struct{}

func New() *ExtensionDetector {
	return &ExtensionDetector{}
}

func (d *ExtensionDetector) Detect(path string) domain.Kind {
	return Detect(path)
}

// Detect maps a file name to its kind, case-insensitively.
func Detect(path string) domain.Kind {
	if k, ok := kindsByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return k
	}
	return domain.KindUnknown
}
