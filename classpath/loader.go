// Package classpath resolves JVM internal class names to their class-file
// bytes, the collaborator the inheritance provider and remapper query to
// look at classes beyond the one currently being transformed.
package classpath

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Loader maps an internal class name ("java/lang/Object", no ".class"
// suffix) to its class-file bytes, or reports it unknown via ok=false.
// Implementations must be safe for concurrent use — the jar pipeline
// (§4.8/§5) shares one loader across every worker task.
type Loader func(internalName string) (data []byte, ok bool)

// FromLookup wraps a plain map as a Loader, the in-memory case (tests,
// the jar pipeline's per-task "classes already read from this archive"
// index).
func FromLookup(m map[string][]byte) Loader {
	return func(internalName string) ([]byte, bool) {
		data, ok := m[internalName]
		return data, ok
	}
}

// FromDirectory resolves internalName against root/<internalName>.class
// on the local filesystem — the closest Go equivalent of a
// directory-backed ClassLoader resource lookup.
func FromDirectory(root string) Loader {
	return func(internalName string) ([]byte, bool) {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(internalName)+".class"))
		if err != nil {
			return nil, false
		}
		return data, true
	}
}

// FromSystemLoader treats the current working directory as the implicit
// classpath entry every run already has, the nearest Go analogue of a
// JVM's bootstrap/system class loader for a CLI tool with no JVM runtime
// of its own to draw a "platform classpath" from.
func FromSystemLoader() Loader {
	return FromDirectory(".")
}

// jarIndex is the owner the FromJars Loader closure captures: one *zip.ReadCloser per opened archive (kept open so entry
// reads don't require reopening the file) and a name -> archive/index
// map built once at construction.
type jarIndex struct {
	archives []*zip.ReadCloser
	entries  map[string]*zip.File
}

// FromJars opens every path in paths as a zip/jar archive and builds a
// combined internal-name -> entry index. Archives are indexed in argument
// order and a later archive's entry replaces an earlier one's for the
// same name, so the last path wins ties — the opposite of Compound, where
// the first loader that has a class wins. Compound over one FromJars call
// per archive gives first-wins ordering.
//
// The returned Closer must be called when the loader is no longer
// needed to release the underlying archive file handles.
func FromJars(paths []string) (Loader, io.Closer, error) {
	idx := &jarIndex{entries: make(map[string]*zip.File)}
	for _, p := range paths {
		rc, err := zip.OpenReader(p)
		if err != nil {
			idx.closeAll()
			return nil, nil, fmt.Errorf("classpath: opening jar %s: %w", p, err)
		}
		idx.archives = append(idx.archives, rc)
		for _, f := range rc.File {
			if !strings.HasSuffix(f.Name, ".class") {
				continue
			}
			name := strings.TrimSuffix(f.Name, ".class")
			idx.entries[name] = f
		}
	}
	loader := func(internalName string) ([]byte, bool) {
		f, ok := idx.entries[internalName]
		if !ok {
			return nil, false
		}
		rc, err := f.Open()
		if err != nil {
			return nil, false
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, false
		}
		return data, true
	}
	return loader, idx, nil
}

func (idx *jarIndex) Close() error {
	return idx.closeAll()
}

func (idx *jarIndex) closeAll() error {
	var firstErr error
	for _, rc := range idx.archives {
		if err := rc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Compound tries each loader in order, returning the first non-empty
// result; nested Compound calls flatten naturally since Compound itself
// returns a plain Loader.
func Compound(loaders ...Loader) Loader {
	return func(internalName string) ([]byte, bool) {
		for _, l := range loaders {
			if l == nil {
				continue
			}
			if data, ok := l(internalName); ok {
				return data, ok
			}
		}
		return nil, false
	}
}

// Memoized wraps l with a private cache; every distinct internalName is
// looked up through l at most once, including misses.
func Memoized(l Loader) Loader {
	return MemoizedTo(l, &sync.Map{})
}

// MemoizedTo wraps l with a caller-supplied shared cache, the shape
// §4.8's cross-task byte cache needs: every jar-pipeline task gets its
// own Loader built with MemoizedTo(baseLoader, sharedCache) so lookups
// for the same class across tasks are served from one cache.
func MemoizedTo(l Loader, cache *sync.Map) Loader {
	return func(internalName string) ([]byte, bool) {
		if v, ok := cache.Load(internalName); ok {
			data := v.([]byte)
			return data, data != nil
		}
		data, ok := l(internalName)
		if !ok {
			// Every valid class file starts with a 4-byte magic number, so
			// a nil slice unambiguously marks a confirmed miss.
			cache.LoadOrStore(internalName, []byte(nil))
			return nil, false
		}
		actual, _ := cache.LoadOrStore(internalName, data)
		return actual.([]byte), true
	}
}

// ClassRewriter transforms one class's bytes, the narrow surface
// Remapping/RemappingNames need from package remap without importing it
// (remap imports classpath, not the other way around; a func value is
// how the two packages stay decoupled).
type ClassRewriter func(internalName string, data []byte) ([]byte, error)

// Remapping wraps l so every returned class's bytes are additionally
// passed through rewrite — the "read a class as it would look after the
// remapper applies" loader view ยง4.6 calls remapping(remapper).
func Remapping(l Loader, rewrite ClassRewriter) Loader {
	return func(internalName string) ([]byte, bool) {
		data, ok := l(internalName)
		if !ok {
			return nil, false
		}
		out, err := rewrite(internalName, data)
		if err != nil {
			return nil, false
		}
		return out, true
	}
}

// NameTranslator maps a name in the `to` namespace back to its `from`
// namespace form, or reports ok=false if unknown — the reverse
// direction RemappingNames needs to translate an incoming lookup key
// before querying the underlying (from-namespace) loader.
type NameTranslator func(toName string) (fromName string, ok bool)

// RemappingNames wraps l so lookups are keyed by names in the `to`
// namespace: translate(toName) resolves the underlying from-namespace
// name to query l with, and rewrite remaps the returned bytes' class
// references from `from` to `to` before returning them.
func RemappingNames(l Loader, translate NameTranslator, rewrite ClassRewriter) Loader {
	return func(toName string) ([]byte, bool) {
		fromName, ok := translate(toName)
		if !ok {
			fromName = toName
		}
		data, ok := l(fromName)
		if !ok {
			return nil, false
		}
		out, err := rewrite(fromName, data)
		if err != nil {
			return nil, false
		}
		return out, true
	}
}
