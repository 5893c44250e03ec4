package mapping

// NewMappings constructs an empty Mappings for the given namespaces, the
// starting point for programmatic construction (tests, the join/rename
// transformations) rather than format parsing.
func NewMappings(namespaces ...string) *Mappings {
	return &Mappings{Namespaces: append([]string(nil), namespaces...)}
}

// AllFormats returns every registered codec, detectable or not, in a
// stable order — used by FormatByName to resolve a format by name and by
// tests that exercise every codec uniformly.
func AllFormats() []Format {
	return []Format{
		&SRGFormat{},
		&XSRGFormat{},
		&CSRGFormat{},
		&TSRGv1Format{},
		&TSRGv2Format{},
		&TinyV1Format{},
		&TinyV2Format{},
		&ProguardFormat{},
		&EnigmaFormat{},
		&RecafFormat{},
	}
}

// FormatByName looks up a registered text Format by its Name(), for
// library callers that select a format explicitly rather than relying on
// auto-detection (the CLI always auto-detects). The compacted binary format is deliberately excluded —
// callers that need it use CompactedFormat directly, since it doesn't
// share the text-oriented Format interface.
func FormatByName(name string) (Format, bool) {
	for _, f := range AllFormats() {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}
