package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}
	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_ListFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"train3.csv", "train10.csv", "train1.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	names, err := OSFileSystem{}.ListFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"train1.csv", "train10.csv", "train3.csv"}, names)
}

func TestOSFileSystem_CreateOpen(t *testing.T) {
	fs := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := fs.Create(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("0,10\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := fs.Open(path)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "0,10\n", string(data))
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("angle, reflectivity\n")
	require.NoError(t, mfs.WriteFile("/raw/train1.csv", testData, 0644))

	data, err := mfs.ReadFile("/raw/train1.csv")
	require.NoError(t, err)
	assert.Equal(t, testData, data)

	// callers cannot mutate the stored copy
	data[0] = 'X'
	again, _ := mfs.ReadFile("/raw/train1.csv")
	assert.Equal(t, testData, again)
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/clean/train1.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("created content"))
	require.NoError(t, err)

	data, err := mfs.ReadFile("/clean/train1.csv")
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, w.Close())
	data, err = mfs.ReadFile("/clean/train1.csv")
	require.NoError(t, err)
	assert.Equal(t, "created content", string(data))
}

func TestMemoryFileSystem_Open(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_, err := mfs.Open("/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, mfs.WriteFile("/a", []byte("abc"), 0644))
	r, err := mfs.Open("/a")
	require.NoError(t, err)
	data, _ := io.ReadAll(r)
	assert.Equal(t, "abc", string(data))
	assert.NoError(t, r.Close())
}

func TestMemoryFileSystem_ListFiles(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/raw/train2.csv", nil, 0644))
	require.NoError(t, mfs.WriteFile("/raw/train0.csv", nil, 0644))
	require.NoError(t, mfs.WriteFile("/raw/sub/train5.csv", nil, 0644))
	require.NoError(t, mfs.WriteFile("/other/train9.csv", nil, 0644))

	names, err := mfs.ListFiles("/raw")
	require.NoError(t, err)
	assert.Equal(t, []string{"train0.csv", "train2.csv"}, names)

	_, err = mfs.ListFiles("/nowhere")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, mfs.MkdirAll("/empty/dir", 0755))
	names, err = mfs.ListFiles("/empty/dir")
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.True(t, mfs.Exists("/empty"))
}
