package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"fsguard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HELPERS

// newTestManager creates a Manager over a fresh temp root.
func newTestManager(t *testing.T, opts ...Option) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	logger, _ := logging.NewTestLogger()

	m, err := New(root, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return m, root
}

// createTestFile creates a file under dir, creating parents as needed.
func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func readFileContent(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func skipIfRoot(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "windows" && os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
}

func TestNew(t *testing.T) {
	t.Run("valid root", func(t *testing.T) {
		m, root := newTestManager(t)
		assert.Equal(t, root, m.Root())
	})

	t.Run("root above empty prefix", func(t *testing.T) {
		_, err := New("../x")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrParentAboveRoot))
	})

	t.Run("root does not need to exist", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "later")
		m, err := New(root)
		require.NoError(t, err)

		ok, err := m.Exists("")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestWriteRead_RoundTrip(t *testing.T) {
	m, root := newTestManager(t)

	payloads := map[string][]byte{
		"a.txt":           []byte("hi"),
		"empty.txt":       {},
		"bin/blob":        {0x00, 0xff, 0x10, 0x00},
		"deep/er/est.txt": []byte("multi\nline\n"),
	}

	for path, contents := range payloads {
		t.Run(path, func(t *testing.T) {
			require.NoError(t, m.Write(path, contents))

			got, err := m.Read(path)
			require.NoError(t, err)
			assert.Equal(t, contents, got)
			assert.True(t, fileExists(filepath.Join(root, filepath.FromSlash(path))))
		})
	}
}

func TestWrite(t *testing.T) {
	t.Run("creates missing parent directory", func(t *testing.T) {
		m, root := newTestManager(t)

		require.NoError(t, m.Write("a/b.txt", []byte("hi")))

		info, err := os.Stat(filepath.Join(root, "a"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, "hi", readFileContent(t, filepath.Join(root, "a", "b.txt")))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		m, root := newTestManager(t)
		createTestFile(t, root, "a.txt", "a much longer original")

		require.NoError(t, m.Write("a.txt", []byte("short")))
		assert.Equal(t, "short", readFileContent(t, filepath.Join(root, "a.txt")))
	})

	t.Run("parent is a file", func(t *testing.T) {
		m, root := newTestManager(t)
		createTestFile(t, root, "a", "file")

		err := m.Write("a/b.txt", []byte("hi"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotDirectory))

		var fe *Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, filepath.Join(root, "a"), fe.Path)
	})

	t.Run("ancestor is a file", func(t *testing.T) {
		m, root := newTestManager(t)
		createTestFile(t, root, "a", "file")

		err := m.Write("a/b/c.txt", []byte("hi"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCreateFailed))
	})

	t.Run("target is a directory", func(t *testing.T) {
		m, root := newTestManager(t)
		require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0755))

		err := m.Write("dir", []byte("hi"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFile))
	})

	t.Run("read only directory", func(t *testing.T) {
		skipIfRoot(t)
		if runtime.GOOS == "windows" {
			t.Skip("directory permissions differ on windows")
		}
		m, root := newTestManager(t)
		dir := filepath.Join(root, "ro")
		require.NoError(t, os.Mkdir(dir, 0555))
		t.Cleanup(func() { os.Chmod(dir, 0755) })

		err := m.Write("ro/a.txt", []byte("hi"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrWriteFailed))
		assert.True(t, errors.Is(err, os.ErrPermission), "underlying OS error should be reachable")
	})

	t.Run("illegal parent touches nothing", func(t *testing.T) {
		m, root := newTestManager(t)

		err := m.Write("a/../../escape.txt", []byte("x"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIllegalParent))
		assert.False(t, fileExists(filepath.Join(root, "a")))
		assert.False(t, fileExists(filepath.Join(filepath.Dir(root), "escape.txt")))
	})
}

func TestWrite_Invalidator(t *testing.T) {
	var invalidated []string
	m, root := newTestManager(t, WithInvalidator(InvalidatorFunc(func(path string) {
		invalidated = append(invalidated, path)
	})))

	require.NoError(t, m.Write("src/main.wasm", []byte("v1")))
	require.Error(t, m.Write("src", []byte("v1")), "writing over a directory must fail")

	assert.Equal(t, []string{filepath.Join(root, "src", "main.wasm")}, invalidated)
}

func TestMoveDelete_Invalidator(t *testing.T) {
	var invalidated []string
	m, root := newTestManager(t, WithInvalidator(InvalidatorFunc(func(path string) {
		invalidated = append(invalidated, path)
	})))
	createTestFile(t, root, "src/a.wasm", "a")

	require.NoError(t, m.Move("src/a.wasm", "src/b.wasm"))
	require.Error(t, m.Move("src/missing.wasm", "src/c.wasm"))
	require.NoError(t, m.Delete("src"))
	require.Error(t, m.Delete("src"))

	assert.Equal(t, []string{
		filepath.Join(root, "src", "a.wasm"),
		filepath.Join(root, "src", "b.wasm"),
		filepath.Join(root, "src"),
	}, invalidated)
}

func TestRead(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		m, root := newTestManager(t)

		_, err := m.Read("missing.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.Contains(t, err.Error(), filepath.Join(root, "missing.txt"))
	})

	t.Run("directory", func(t *testing.T) {
		m, root := newTestManager(t)
		require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0755))

		_, err := m.Read("dir")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrReadFailed))
	})

	t.Run("unreadable file", func(t *testing.T) {
		skipIfRoot(t)
		m, root := newTestManager(t)
		path := createTestFile(t, root, "secret.txt", "x")
		if err := os.Chmod(path, 0000); err != nil {
			t.Skip("Cannot change file permissions")
		}
		t.Cleanup(func() { os.Chmod(path, 0644) })

		_, err := m.Read("secret.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrReadFailed))
	})
}

func TestMove(t *testing.T) {
	t.Run("renames file", func(t *testing.T) {
		m, root := newTestManager(t)
		createTestFile(t, root, "old.txt", "content")

		require.NoError(t, m.Move("old.txt", "new.txt"))
		assert.False(t, fileExists(filepath.Join(root, "old.txt")))
		assert.Equal(t, "content", readFileContent(t, filepath.Join(root, "new.txt")))
	})

	t.Run("renames directory", func(t *testing.T) {
		m, root := newTestManager(t)
		createTestFile(t, root, "dir/inner.txt", "content")

		require.NoError(t, m.Move("dir", "moved"))
		assert.Equal(t, "content", readFileContent(t, filepath.Join(root, "moved", "inner.txt")))
	})

	t.Run("missing source", func(t *testing.T) {
		m, _ := newTestManager(t)

		err := m.Move("missing.txt", "new.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("destination exists", func(t *testing.T) {
		m, root := newTestManager(t)
		createTestFile(t, root, "src.txt", "source")
		createTestFile(t, root, "dst.txt", "destination")

		err := m.Move("src.txt", "dst.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAlreadyExists))

		var fe *Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, filepath.Join(root, "src.txt"), fe.Path)
		assert.Equal(t, filepath.Join(root, "dst.txt"), fe.NewPath)

		assert.Equal(t, "source", readFileContent(t, filepath.Join(root, "src.txt")))
		assert.Equal(t, "destination", readFileContent(t, filepath.Join(root, "dst.txt")))
	})

	t.Run("destination parent missing", func(t *testing.T) {
		m, root := newTestManager(t)
		createTestFile(t, root, "src.txt", "source")

		err := m.Move("src.txt", "nowhere/dst.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMoveFailed))
		assert.True(t, fileExists(filepath.Join(root, "src.txt")))
	})

	t.Run("illegal destination", func(t *testing.T) {
		m, root := newTestManager(t)
		createTestFile(t, root, "src.txt", "source")

		err := m.Move("src.txt", "../src.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIllegalParent))
		assert.True(t, fileExists(filepath.Join(root, "src.txt")))
	})
}

func TestExists(t *testing.T) {
	m, _ := newTestManager(t)

	ok, err := m.Exists("a/b.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Write("a/b.txt", []byte("hi")))

	for _, p := range []string{"a/b.txt", "a", "./a/", "a\\b.txt", ""} {
		ok, err = m.Exists(p)
		require.NoError(t, err)
		assert.True(t, ok, "expected %q to exist", p)
	}

	_, err = m.Exists("a/../b.txt")
	assert.True(t, errors.Is(err, ErrIllegalParent))
}

// Mirrors the sandbox walkthrough: write, read, delete the directory.
func TestSandboxWalkthrough(t *testing.T) {
	m, root := newTestManager(t)

	require.NoError(t, m.Write("a/b.txt", []byte("hi")))
	assert.True(t, fileExists(filepath.Join(root, "a")))

	got, err := m.Read("a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))

	require.NoError(t, m.Delete("a"))

	ok, err := m.Exists("a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, fileExists(root), "root itself must survive")
}
