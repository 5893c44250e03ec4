// Package cli implements the command-line entry point (§6): flag and
// positional-argument parsing, and the orchestration that wires a parsed
// Config into the mapping/classpath/jarremap packages. It mirrors the
// teacher's main.go style — no flag package, manual os.Args slicing,
// os.Stat existence checks — extended with the literal "--" separator
// §6 introduces ahead of the positional arguments.
package cli

import "fmt"

// Usage is printed to stdout whenever argument parsing or validation
// fails, per §6 ("fail ... with a usage line to stdout").
const Usage = "Usage: remap [-s|--skip-resources] [-f|--force] [-v|--stacktrace] -- <input> <output> <mappings> <from> <to> [classpath...]"

// Config is the fully parsed, unvalidated command line: flags plus the
// positional arguments split by the literal "--" separator.
type Config struct {
	SkipResources bool
	Force         bool
	Stacktrace    bool

	Input        string
	Output       string
	MappingsPath string
	From         string
	To           string
	Classpath    []string
}

// ParseArgs splits args on the first literal "--", recognizes the three
// boolean switches before it, and collects the positional arguments
// after it. It does not touch the filesystem — see Validate for the
// checks §6 requires against existing files and directories.
func ParseArgs(args []string) (*Config, error) {
	sep := -1
	for i, a := range args {
		if a == "--" {
			sep = i
			break
		}
	}
	if sep < 0 {
		return nil, fmt.Errorf("missing -- separator")
	}

	cfg := &Config{}
	for _, a := range args[:sep] {
		switch a {
		case "-s", "--skip-resources":
			cfg.SkipResources = true
		case "-f", "--force":
			cfg.Force = true
		case "-v", "--stacktrace":
			cfg.Stacktrace = true
		default:
			return nil, fmt.Errorf("unrecognized flag %q", a)
		}
	}

	positional := args[sep+1:]
	if len(positional) < 5 {
		return nil, fmt.Errorf("expected at least 5 positional arguments, got %d", len(positional))
	}
	cfg.Input = positional[0]
	cfg.Output = positional[1]
	cfg.MappingsPath = positional[2]
	cfg.From = positional[3]
	cfg.To = positional[4]
	cfg.Classpath = positional[5:]
	return cfg, nil
}
