package mapping

import (
	"io"
	"strings"
)

// Format is the capability interface every codec implements (spec.md ยง4.3,
// ยง9 "MappingsFormat is a capability interface"). Detect is optional — CSRG
// and Recaf are not detectable and simply always return false, and callers
// who know the format should bypass detection and call Parse directly.
type Format interface {
	Name() string
	Detect(data string) bool
	Parse(r io.Reader) (*Mappings, error)
	Write(m *Mappings) ([]string, error)
}

// LazyWriter is the interface for formats whose writer can stream lines
// rather than materializing the whole output. No codec in this package
// implements it: every codec produces its output through Format.Write.
type LazyWriter interface {
	WriteLazy(m *Mappings) (<-chan string, error)
}

// detectionOrder is the fixed order ยง4.3 "Auto-detection" specifies:
// Tiny v1, Tiny v2, SRG, XSRG, Proguard, TSRG v1, TSRG v2, (CSRG skipped),
// Enigma, (Recaf skipped), (Compacted skipped — binary, never auto-detected
// from text).
func detectionOrder() []Format {
	return []Format{
		&TinyV1Format{},
		&TinyV2Format{},
		&SRGFormat{},
		&XSRGFormat{},
		&ProguardFormat{},
		&TSRGv1Format{},
		&TSRGv2Format{},
		&EnigmaFormat{},
	}
}

// Detect returns the first detectable format (in the fixed ยง4.3 order)
// whose Detect reports true for data, or nil if none match.
func Detect(data string) Format {
	for _, f := range detectionOrder() {
		if f.Detect(data) {
			return f
		}
	}
	return nil
}

// ParseAutoDetect detects the format of data and parses it, failing if no
// detectable format recognizes the input.
func ParseAutoDetect(data string) (*Mappings, error) {
	f := Detect(data)
	if f == nil {
		return nil, errMalformed(0, "no detectable mapping format recognized the input")
	}
	return f.Parse(strings.NewReader(data))
}
