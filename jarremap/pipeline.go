// Package jarremap applies a remap.LoaderSimpleRemapper across whole jar
// archives (ยง4.8/ยง5): read every class entry, remap it, write it back
// under its new name, and carry non-class entries through a resource
// visitor chain.
package jarremap

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/swind/go-jvmmap/classpath"
	"github.com/swind/go-jvmmap/inherit"
	"github.com/swind/go-jvmmap/internal/classfile"
	"github.com/swind/go-jvmmap/mapping"
	"github.com/swind/go-jvmmap/remap"
)

// Pipeline holds everything every task in a RemapJars call shares: the
// flattened name map (computed once, per ยง4.8's "precomputed (from,to)
// name_map shared across tasks") and a classpath loader backed by a
// single cross-task cache, so a class read while resolving one task's
// inheritance chain is read from disk at most once even if another
// task's classes also reference it.
type Pipeline struct {
	nameMap     map[string]string
	sharedCache *sync.Map
	extra       classpath.Loader
}

// NewPipeline builds the shared name map (via remap.AsAsmMapping) and
// wraps extraClasspath — additional classes visible for inheritance
// resolution beyond what each task's own archive contains (e.g. the
// other jars in the same batch, or a platform classpath) — in the
// cross-task memoizing cache.
func NewPipeline(m *mapping.Mappings, from, to string, includeMethods, includeFields bool, extraClasspath classpath.Loader) (*Pipeline, error) {
	nameMap, err := remap.AsAsmMapping(m, from, to, includeMethods, includeFields)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		nameMap:     nameMap,
		sharedCache: &sync.Map{},
		extra:       extraClasspath,
	}, nil
}

// RemapJars runs every task concurrently (SetLimit(len(tasks)): one
// goroutine per task, all at once) and returns one Result per task in
// the same order tasks were given, regardless of completion order. A
// task's failure is recorded in its own Result rather than aborting its
// siblings — ยง4.8's "supervised concurrency" requirement — so Results
// must always be checked individually; RemapJars itself only returns a
// non-nil error for a failure that prevented scheduling tasks at all.
func (p *Pipeline) RemapJars(ctx context.Context, tasks []Task) ([]Result, error) {
	results := make([]Result, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(tasks))
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			n, err := p.runTask(gctx, t)
			results[i] = Result{Task: t, ClassesWritten: n, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (p *Pipeline) runTask(ctx context.Context, t Task) (int, error) {
	rc, err := zip.OpenReader(t.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("jarremap: opening %s: %w", t.SourcePath, err)
	}
	defer rc.Close()

	local := make(map[string][]byte)
	var classEntries []*zip.File
	var resourceEntries []*zip.File
	for _, f := range rc.File {
		if strings.HasSuffix(f.Name, ".class") {
			classEntries = append(classEntries, f)
			continue
		}
		resourceEntries = append(resourceEntries, f)
	}
	for _, f := range classEntries {
		data, err := readZipFile(f)
		if err != nil {
			return 0, fmt.Errorf("jarremap: reading %s in %s: %w", f.Name, t.SourcePath, err)
		}
		local[strings.TrimSuffix(f.Name, ".class")] = data
	}

	loader := classpath.Compound(
		classpath.FromLookup(local),
		classpath.MemoizedTo(p.extra, p.sharedCache),
	)
	provider := inherit.NewMemoizing(inherit.NewProvider(loader))
	remapper := remap.NewLoaderSimpleRemapper(p.nameMap, provider)

	visit := t.Resources
	if visit == nil {
		visit = DefaultResourceVisitor
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	written := 0
	for _, f := range classEntries {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		data := local[strings.TrimSuffix(f.Name, ".class")]
		cf, err := classfile.Read(bytes.NewReader(data))
		if err != nil {
			return written, fmt.Errorf("jarremap: parsing %s in %s: %w", f.Name, t.SourcePath, err)
		}
		newOwner, err := remap.RemapClass(cf, remapper)
		if err != nil {
			return written, fmt.Errorf("jarremap: remapping %s in %s: %w", f.Name, t.SourcePath, err)
		}
		out, err := cf.ToBytes()
		if err != nil {
			return written, fmt.Errorf("jarremap: encoding %s in %s: %w", f.Name, t.SourcePath, err)
		}
		w, err := zw.Create(newOwner + ".class")
		if err != nil {
			return written, err
		}
		if _, err := w.Write(out); err != nil {
			return written, err
		}
		written++
	}

	for _, f := range resourceEntries {
		data, err := readZipFile(f)
		if err != nil {
			return written, fmt.Errorf("jarremap: reading %s in %s: %w", f.Name, t.SourcePath, err)
		}
		newName, newData, ok := visit(f.Name, data)
		if !ok {
			continue
		}
		w, err := zw.Create(newName)
		if err != nil {
			return written, err
		}
		if _, err := w.Write(newData); err != nil {
			return written, err
		}
	}

	if err := zw.Close(); err != nil {
		return written, err
	}
	if err := writeFileAtomic(t.DestPath, buf.Bytes()); err != nil {
		return written, err
	}
	return written, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// writeFileAtomic writes data to a temp file alongside path and renames
// it into place, so a task that fails partway through never leaves a
// truncated jar at DestPath.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
