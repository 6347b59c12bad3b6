// Package airline resolves IATA carrier codes into display names.
package airline

import "strings"

// UnknownAirline is shown when an offer carries no carrier code at all.
const UnknownAirline = "Unknown Airline"

var defaultNames = map[string]string{
	"AI": "Air India",
	"IX": "Air India Express",
	"6E": "IndiGo",
	"UK": "Vistara",
	"SG": "SpiceJet",
	"QP": "Akasa Air",
	"I5": "AIX Connect",
	"G8": "Go First",
	"9I": "Alliance Air",
	"EK": "Emirates",
	"EY": "Etihad Airways",
	"QR": "Qatar Airways",
	"SQ": "Singapore Airlines",
	"TG": "Thai Airways",
	"LH": "Lufthansa",
	"BA": "British Airways",
	"AF": "Air France",
	"KL": "KLM",
	"TK": "Turkish Airlines",
	"UA": "United Airlines",
	"AA": "American Airlines",
	"DL": "Delta Air Lines",
	"FZ": "flydubai",
	"G9": "Air Arabia",
	"WY": "Oman Air",
	"GF": "Gulf Air",
	"UL": "SriLankan Airlines",
	"MH": "Malaysia Airlines",
	"CX": "Cathay Pacific",
	"VS": "Virgin Atlantic",
}

// Directory is a read-only code to name table.
type Directory struct {
	names map[string]string
}

// NewDirectory builds a directory from the default table with overrides
// applied on top. Override codes are matched case-insensitively.
func NewDirectory(overrides map[string]string) *Directory {
	names := make(map[string]string, len(defaultNames)+len(overrides))
	for code, name := range defaultNames {
		names[code] = name
	}
	for code, name := range overrides {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || name == "" {
			continue
		}
		names[code] = name
	}
	return &Directory{names: names}
}

// NewStaticDirectory uses exactly the given table, e.g. test fixtures.
func NewStaticDirectory(names map[string]string) *Directory {
	copied := make(map[string]string, len(names))
	for code, name := range names {
		copied[strings.ToUpper(code)] = name
	}
	return &Directory{names: copied}
}

// Name never fails: unknown codes come back as-is, an empty code as
// UnknownAirline.
func (d *Directory) Name(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return UnknownAirline
	}
	if name, ok := d.names[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}
