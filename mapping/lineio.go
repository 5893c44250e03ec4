package mapping

import (
	"bufio"
	"io"
	"strings"
)

// lineSource streams non-empty, trimmed lines from r while counting 1-based
// line numbers, generalizing the teacher's MappingReader.Pump scanner loop
// (bufio.NewScanner + strings.TrimSpace + blank-line skip) into a shared
// primitive every codec's Parse builds on.
type lineSource struct {
	scanner *bufio.Scanner
	lineNo  int
	raw     string // untrimmed current line, for codecs that care about indentation
}

func newLineSource(r io.Reader) *lineSource {
	return &lineSource{scanner: bufio.NewScanner(r)}
}

// Next advances to the next non-blank line, skipping pure-whitespace lines.
// trimmed reports the TrimSpace'd content; ok is false at EOF.
func (s *lineSource) Next() (trimmed string, ok bool) {
	for s.scanner.Scan() {
		s.lineNo++
		s.raw = s.scanner.Text()
		t := strings.TrimSpace(s.raw)
		if t == "" {
			continue
		}
		return t, true
	}
	return "", false
}

// NextRaw behaves like Next but returns the untrimmed line (still skipping
// lines that are blank after trimming), used by indent-based state machines
// (Tiny v2, TSRG, Enigma) that need leading-tab depth.
func (s *lineSource) NextRaw() (raw string, ok bool) {
	for s.scanner.Scan() {
		s.lineNo++
		s.raw = s.scanner.Text()
		if strings.TrimSpace(s.raw) == "" {
			continue
		}
		return s.raw, true
	}
	return "", false
}

func (s *lineSource) LineNo() int { return s.lineNo }

func (s *lineSource) Err() error { return s.scanner.Err() }

// indentDepth counts leading tab characters (the formats that use indent
// state machines are tab-indented per spec.md ยง4.3).
func indentDepth(raw string) int {
	depth := 0
	for depth < len(raw) && raw[depth] == '\t' {
		depth++
	}
	return depth
}

// firstNonEmptyLine returns the first non-blank line of lines, used by
// format detection (spec.md ยง4.3: "detection...looks at the first non-empty
// line").
func firstNonEmptyLine(lines []string) (string, bool) {
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t != "" {
			return t, true
		}
	}
	return "", false
}

// splitAllLines is used only by detection, which is explicitly allowed to
// look at the whole input (spec.md ยง4.3: "except for initial detection").
func splitAllLines(data string) []string {
	return strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
}
