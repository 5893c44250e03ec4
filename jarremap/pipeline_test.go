package jarremap

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swind/go-jvmmap/classpath"
	"github.com/swind/go-jvmmap/internal/classfile"
	"github.com/swind/go-jvmmap/mapping"
)

func buildPipelineTestClassBytes(t *testing.T) []byte {
	t.Helper()
	cp := classfile.NewConstantPool()
	cf := &classfile.ClassFile{
		MajorVersion: classfile.DefaultMajor,
		ConstantPool: cp,
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
		ThisClass:    cp.AddClass("a/b/C"),
		SuperClass:   cp.AddClass("java/lang/Object"),
	}
	data, err := cf.ToBytes()
	require.NoError(t, err)
	return data
}

func writeJar(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func readJarEntries(t *testing.T, path string) map[string][]byte {
	t.Helper()
	rc, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer rc.Close()
	out := make(map[string][]byte)
	for _, f := range rc.File {
		out[f.Name] = readZipFileForTest(t, f)
	}
	return out
}

func readZipFileForTest(t *testing.T, f *zip.File) []byte {
	t.Helper()
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func sampleClassMapping() *mapping.Mappings {
	return &mapping.Mappings{
		Namespaces: []string{"official", "named"},
		Classes: []mapping.MappedClass{
			{Names: []string{"a/b/C", "a/b/Renamed"}},
		},
	}
}

func TestRemapJarsRenamesClassAndDropsSignatureFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.jar")
	dst := filepath.Join(dir, "out.jar")
	writeJar(t, src, map[string][]byte{
		"a/b/C.class":     buildPipelineTestClassBytes(t),
		"META-INF/X.SF":   []byte("signature"),
		"resource.txt":    []byte("hello"),
	})

	p, err := NewPipeline(sampleClassMapping(), "official", "named", true, true, classpath.FromLookup(nil))
	require.NoError(t, err)

	results, err := p.RemapJars(context.Background(), []Task{{SourcePath: src, DestPath: dst}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].ClassesWritten)

	entries := readJarEntries(t, dst)
	_, hasRenamed := entries["a/b/Renamed.class"]
	assert.True(t, hasRenamed)
	_, hasOld := entries["a/b/C.class"]
	assert.False(t, hasOld)
	_, hasSig := entries["META-INF/X.SF"]
	assert.False(t, hasSig)
	assert.Equal(t, []byte("hello"), entries["resource.txt"])
}

func TestRemapJarsReportsPerTaskErrorWithoutAbortingSiblings(t *testing.T) {
	dir := t.TempDir()
	goodSrc := filepath.Join(dir, "good.jar")
	writeJar(t, goodSrc, map[string][]byte{"a/b/C.class": buildPipelineTestClassBytes(t)})
	badSrc := filepath.Join(dir, "missing.jar")

	p, err := NewPipeline(sampleClassMapping(), "official", "named", true, true, classpath.FromLookup(nil))
	require.NoError(t, err)

	tasks := []Task{
		{SourcePath: badSrc, DestPath: filepath.Join(dir, "bad-out.jar")},
		{SourcePath: goodSrc, DestPath: filepath.Join(dir, "good-out.jar")},
	}
	results, err := p.RemapJars(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)
	assert.Equal(t, 1, results[1].ClassesWritten)

	_, statErr := os.Stat(filepath.Join(dir, "good-out.jar"))
	assert.NoError(t, statErr)
}

func TestRemapJarsUsesCustomResourceVisitor(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.jar")
	dst := filepath.Join(dir, "out.jar")
	writeJar(t, src, map[string][]byte{
		"a/b/C.class": buildPipelineTestClassBytes(t),
		"drop.txt":    []byte("drop me"),
	})

	p, err := NewPipeline(sampleClassMapping(), "official", "named", true, true, classpath.FromLookup(nil))
	require.NoError(t, err)

	dropAll := func(name string, data []byte) (string, []byte, bool) { return "", nil, false }
	results, err := p.RemapJars(context.Background(), []Task{
		{SourcePath: src, DestPath: dst, Resources: dropAll},
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	entries := readJarEntries(t, dst)
	_, hasResource := entries["drop.txt"]
	assert.False(t, hasResource)
}
