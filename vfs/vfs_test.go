package vfs

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func tarball(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, data := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(data)), Typeflag: tar.TypeReg}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func readAll(t *testing.T, c *Content, path string) []byte {
	t.Helper()
	rc, err := c.Open(path)
	require.NoError(t, err, path)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestContentScanAndOpen(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.grf"), []byte("first"))
	writeFile(t, filepath.Join(root, "readme.txt"), []byte("text"))
	writeFile(t, filepath.Join(root, "sets", "b.GRF"), []byte("second"))
	writeFile(t, filepath.Join(root, "pack.tar"), tarball(t, map[string][]byte{
		"pack/c.grf":     []byte("third"),
		"pack/readme.md": []byte("docs"),
	}))

	c := NewContent(NewDirectoryDriver(root))
	paths, err := c.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.grf", "pack.tar/pack/c.grf", "sets/b.GRF"}, paths)

	assert.Equal(t, []byte("first"), readAll(t, c, "a.grf"))
	assert.Equal(t, []byte("second"), readAll(t, c, "sets/b.GRF"))
	assert.Equal(t, []byte("third"), readAll(t, c, "pack.tar/pack/c.grf"))
	// files can be opened again once closed
	assert.Equal(t, []byte("first"), readAll(t, c, "a.grf"))
}

func TestContentOpenErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.grf"), []byte("first"))
	writeFile(t, filepath.Join(root, "sets", "b.grf"), []byte("second"))
	c := NewContent(NewDirectoryDriver(root))

	for _, path := range []string{"missing.grf", "sets", "a.grf/b.grf", "sets/missing.grf"} {
		_, err := c.Open(path)
		assert.Error(t, err, path)
	}
}

func TestDirectoryCopy(t *testing.T) {
	d := NewDirectoryDriver(t.TempDir())
	f := NewDirectoryDriverFile("out.grf")
	require.NoError(t, d.Add(f))
	require.NoError(t, OpenFileAndCopy(f, bytes.NewReader([]byte("assembled"))))

	got, err := DirectoryGetFile(d, "out.grf")
	require.NoError(t, err)
	r, err := OpenFileAndGetReader(got, true)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("assembled"), data)
	require.NoError(t, got.Close())

	require.NoError(t, d.Remove("out.grf"))
	_, err = DirectoryGetFile(d, "out.grf")
	assert.Error(t, err)
}
