package cli

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/swind/go-jvmmap/classpath"
	"github.com/swind/go-jvmmap/jarremap"
	"github.com/swind/go-jvmmap/mapping"
)

// openTransparent opens path, wrapping it in a gzip reader when the name
// ends in ".gz" — the same transparent-decompression rule the teacher's
// main.go applies to its mapping-file argument.
func openTransparent(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{gz, f}, nil
}

// Validate checks the filesystem preconditions §6 lists: the input and
// mappings files must exist, the output's parent directory must exist,
// and the output itself must not already exist unless Force is set.
func (c *Config) Validate() error {
	if _, err := os.Stat(c.Input); err != nil {
		return fmt.Errorf("input %s does not exist", c.Input)
	}
	if _, err := os.Stat(c.MappingsPath); err != nil {
		return fmt.Errorf("mappings file %s does not exist", c.MappingsPath)
	}
	for _, cp := range c.Classpath {
		if _, err := os.Stat(cp); err != nil {
			return fmt.Errorf("classpath entry %s does not exist", cp)
		}
	}
	if dir := filepath.Dir(c.Output); dir != "" {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			return fmt.Errorf("output directory %s does not exist", dir)
		}
	}
	if _, err := os.Stat(c.Output); err == nil && !c.Force {
		return fmt.Errorf("output %s already exists (use --force to overwrite)", c.Output)
	}
	return nil
}

// loadMappings reads and auto-detects the mapping file at path, passing
// it through openTransparent first.
func loadMappings(path string) (*mapping.Mappings, error) {
	r, err := openTransparent(path)
	if err != nil {
		return nil, fmt.Errorf("opening mappings file: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading mappings file: %w", err)
	}
	m, err := mapping.ParseAutoDetect(string(data))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// skipResourceVisitor drops every non-class jar entry, the behavior
// --skip-resources requests.
func skipResourceVisitor(name string, data []byte) (string, []byte, bool) {
	return "", nil, false
}

// Run validates cfg, builds the remap pipeline, and remaps the single
// input jar to the output jar. It never calls os.Exit — the caller (main)
// decides how to report the returned error.
func Run(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	m, err := loadMappings(cfg.MappingsPath)
	if err != nil {
		return err
	}

	var extra classpath.Loader = func(string) ([]byte, bool) { return nil, false }
	if len(cfg.Classpath) > 0 {
		jarsLoader, closer, err := classpath.FromJars(cfg.Classpath)
		if err != nil {
			return err
		}
		defer closer.Close()
		extra = jarsLoader
	}

	pipeline, err := jarremap.NewPipeline(m, cfg.From, cfg.To, true, true, extra)
	if err != nil {
		return err
	}

	task := jarremap.Task{SourcePath: cfg.Input, DestPath: cfg.Output}
	if cfg.SkipResources {
		task.Resources = skipResourceVisitor
	}

	results, err := pipeline.RemapJars(ctx, []jarremap.Task{task})
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
