package widener

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/swind/go-jvmmap/mapping"
)

// Parse reads an access widener text file (ยง4.9's File format). The
// header line names the version, which then governs whitespace
// strictness for every subsequent record line.
func Parse(r io.Reader) (*AccessWidener, error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	nextNonEmpty := func() (raw string, ok bool) {
		for scanner.Scan() {
			lineNo++
			raw = scanner.Text()
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			return raw, true
		}
		return "", false
	}

	header, ok := nextNonEmpty()
	if !ok {
		return nil, mapping.NewMalformedError(lineNo, "empty access widener file")
	}
	version, namespace, err := parseHeader(header)
	if err != nil {
		return nil, mapping.NewMalformedError(lineNo, "%s", err)
	}

	w := New(version, namespace)
	for {
		raw, ok := nextNonEmpty()
		if !ok {
			break
		}
		fields, err := splitFields(raw, version)
		if err != nil {
			return nil, mapping.NewMalformedError(lineNo, "%s", err)
		}
		if err := parseRecord(w, fields); err != nil {
			return nil, mapping.NewMalformedError(lineNo, "%s", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("widener: reading: %w", err)
	}
	return w, nil
}

func parseHeader(line string) (version int, namespace string, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "accessWidener" {
		return 0, "", fmt.Errorf("expected \"accessWidener v<N> <namespace>\", got %q", line)
	}
	vs := strings.TrimPrefix(fields[1], "v")
	if vs == fields[1] {
		return 0, "", fmt.Errorf("expected version field like \"v2\", got %q", fields[1])
	}
	v, convErr := strconv.Atoi(vs)
	if convErr != nil || (v != 1 && v != 2) {
		return 0, "", fmt.Errorf("unsupported access widener version %q", fields[1])
	}
	return v, fields[2], nil
}

// splitFields tokenizes a record line under the version's whitespace
// rules: v1 tolerates arbitrary leading/interior whitespace, v2 forbids
// leading whitespace (both split on whitespace runs otherwise, which
// already satisfies v2's "tab/space separation" requirement).
func splitFields(raw string, version int) ([]string, error) {
	if version >= 2 && len(raw) > 0 && (raw[0] == ' ' || raw[0] == '\t') {
		return nil, fmt.Errorf("leading whitespace not allowed in v%d: %q", version, raw)
	}
	return strings.Fields(raw), nil
}

func parseRecord(w *AccessWidener, fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("expected \"<access> <kind> <args...>\", got %d fields", len(fields))
	}
	accessTok := fields[0]
	accessTok = strings.TrimPrefix(accessTok, "transitive-")
	var mask AccessMask
	switch accessTok {
	case "accessible":
		mask = Accessible
	case "extendable":
		mask = Extendable
	case "mutable":
		mask = Mutable
	default:
		return fmt.Errorf("unknown access %q", fields[0])
	}

	kind := fields[1]
	args := fields[2:]
	switch kind {
	case "class":
		if len(args) != 1 {
			return fmt.Errorf("class record wants 1 arg, got %d", len(args))
		}
		if mask == Mutable {
			return fmt.Errorf("mutable is not valid on a class")
		}
		w.addClass(args[0], mask)
	case "field":
		if len(args) != 3 {
			return fmt.Errorf("field record wants 3 args, got %d", len(args))
		}
		if mask == Extendable {
			return fmt.Errorf("extendable is not valid on a field")
		}
		w.addField(args[0], args[1], args[2], mask)
	case "method":
		if len(args) != 3 {
			return fmt.Errorf("method record wants 3 args, got %d", len(args))
		}
		if mask == Mutable {
			return fmt.Errorf("mutable is not valid on a method")
		}
		w.addMethod(args[0], args[1], args[2], mask)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	return nil
}
