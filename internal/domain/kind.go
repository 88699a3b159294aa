package domain

// Kind is the detected file format category.
type Kind string

const (
	KindXML     Kind = "xml"
	KindJSON    Kind = "json"
	KindCSV     Kind = "csv"
	KindUnknown Kind = "unknown"
)

// SupportedKinds lists the kinds a validator can be configured for.
var SupportedKinds = []Kind{KindXML, KindJSON, KindCSV}

// RootPath is the issue path that addresses a whole document of this kind.
func (k Kind) RootPath() string {
	if k == KindCSV {
		return TablePath
	}
	return RootPath
}
