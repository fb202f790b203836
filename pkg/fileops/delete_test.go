package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"fsguard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelete_File(t *testing.T) {
	m, root := newTestManager(t)
	path := createTestFile(t, root, "a.txt", "content")

	require.NoError(t, m.Delete("a.txt"))
	assert.False(t, fileExists(path))
}

func TestDelete_Tree(t *testing.T) {
	m, root := newTestManager(t)

	for _, name := range []string{
		"tree/a.txt",
		"tree/b/c.txt",
		"tree/b/d/e.txt",
		"tree/b/d/f/g.txt",
		"tree/.hidden",
		"keep.txt",
	} {
		createTestFile(t, root, name, name)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tree", "empty", "dir"), 0755))

	require.NoError(t, m.Delete("tree"))

	ok, err := m.Exists("tree")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, fileExists(filepath.Join(root, "keep.txt")), "siblings must survive")
}

func TestDelete_DeepTree(t *testing.T) {
	m, root := newTestManager(t, WithMaxPathLength(1<<20))

	// Deep enough that a naive recursive walk would be noticeable; the work
	// list keeps the Go stack flat.
	segments := make([]string, 200)
	for i := range segments {
		segments[i] = "d"
	}
	deep := strings.Join(segments, "/")
	if len(filepath.Join(root, deep)) >= DefaultMaxPathLength() {
		t.Skip("temp dir too long for platform path limit")
	}
	require.NoError(t, m.Write(deep+"/leaf.txt", []byte("x")))

	require.NoError(t, m.Delete("d"))
	assert.False(t, fileExists(filepath.Join(root, "d")))
}

func TestDelete_SymlinkIsNotFollowed(t *testing.T) {
	m, root := newTestManager(t)
	outside := t.TempDir()
	target := createTestFile(t, outside, "precious.txt", "keep me")

	linkDir := filepath.Join(root, "links")
	require.NoError(t, os.Mkdir(linkDir, 0755))
	if err := os.Symlink(outside, filepath.Join(linkDir, "dir-link")); err != nil {
		if runtime.GOOS == "windows" {
			t.Skipf("symlink creation failed on Windows: %v", err)
		}
		t.Fatalf("failed to create symlink: %v", err)
	}

	require.NoError(t, m.Delete("links"))
	assert.False(t, fileExists(linkDir))
	assert.Equal(t, "keep me", readFileContent(t, target))
}

func TestDelete_Missing(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.Delete("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPathType))
}

func TestDelete_UnreadableDirectory(t *testing.T) {
	skipIfRoot(t)
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions differ on windows")
	}
	m, root := newTestManager(t)
	createTestFile(t, root, "locked/a.txt", "x")
	dir := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(dir, 0000))
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	err := m.Delete("locked")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReadFailed))
}

func TestDelete_ChildFailureLeavesPartialTree(t *testing.T) {
	skipIfRoot(t)
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions differ on windows")
	}
	m, root := newTestManager(t)
	createTestFile(t, root, "tree/sealed/a.txt", "x")
	sealed := filepath.Join(root, "tree", "sealed")
	require.NoError(t, os.Chmod(sealed, 0555))
	t.Cleanup(func() { os.Chmod(sealed, 0755) })

	err := m.Delete("tree")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeleteFailed))

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, filepath.Join(sealed, "a.txt"), fe.Path)
	assert.True(t, fileExists(filepath.Join(root, "tree")))
}

func TestDelete_ChildOverLengthLimit(t *testing.T) {
	root := t.TempDir()
	logger, _ := logging.NewTestLogger()
	m, err := New(root, WithLogger(logger), WithMaxPathLength(len(filepath.Join(root, "d"))+4))
	require.NoError(t, err)

	createTestFile(t, root, "d/a_name_past_the_limit.txt", "x")

	err = m.Delete("d")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLong))
	assert.True(t, fileExists(filepath.Join(root, "d", "a_name_past_the_limit.txt")))
}
