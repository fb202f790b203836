package fileops

import (
	"os"
	"path/filepath"
	"time"

	"fsguard/internal/logging"
)

// Manager performs file operations confined to a root directory.
//
// Every path argument is relative to the root and passes through the
// Resolver before any syscall. Existence checks and the operation that
// follows are separate syscalls, so concurrent modification of the tree by
// another process can race with them. Manager is not safe for concurrent use.
type Manager struct {
	resolver    *Resolver
	logger      *logging.AppLogger
	invalidator Invalidator
}

// New creates a Manager rooted at root.
func New(root string, opts ...Option) (*Manager, error) {
	resolver, err := NewResolver(root, opts...)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	logger := o.logger
	if logger == nil {
		logger = logging.GetDefault()
	}

	logger.Debug("File manager ready", "root", resolver.Root(), "max_path_length", resolver.MaxPathLength())

	return &Manager{
		resolver:    resolver,
		logger:      logger,
		invalidator: o.invalidator,
	}, nil
}

// Root returns the normalized absolute root directory.
func (m *Manager) Root() string {
	return m.resolver.Root()
}

// Resolve returns the confined absolute path for path without touching the
// filesystem.
func (m *Manager) Resolve(path string) (string, error) {
	return m.resolver.Resolve(path)
}

// Read returns the contents of the file at path.
func (m *Manager) Read(path string) ([]byte, error) {
	fullPath, err := m.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		return nil, newError(KindNotFound, fullPath, err)
	}

	contents, err := os.ReadFile(fullPath)
	if err != nil {
		m.logger.Error("Failed to read file", "path", fullPath, "error", err)
		return nil, newError(KindReadFailed, fullPath, err)
	}

	m.logger.Debug("Read file", "path", fullPath, "bytes", len(contents))
	return contents, nil
}

// Write creates or truncates the file at path and writes contents to it.
// Missing parent directories are created first.
func (m *Manager) Write(path string, contents []byte) error {
	fullPath, err := m.resolver.Resolve(path)
	if err != nil {
		return err
	}

	dirPath := filepath.Dir(fullPath)
	if info, err := os.Stat(dirPath); err == nil {
		if !info.IsDir() {
			return newError(KindNotDirectory, dirPath, nil)
		}
	} else if err := os.MkdirAll(dirPath, 0755); err != nil {
		m.logger.Error("Failed to create parent directory", "path", dirPath, "error", err)
		return newError(KindCreateFailed, dirPath, err)
	}

	if info, err := os.Lstat(fullPath); err == nil && !info.Mode().IsRegular() {
		return newError(KindNotFile, fullPath, nil)
	}

	if err := os.WriteFile(fullPath, contents, 0644); err != nil {
		m.logger.Error("Failed to write file", "path", fullPath, "error", err)
		return newError(KindWriteFailed, fullPath, err)
	}

	invalidate(m.invalidator, fullPath)

	m.logger.Debug("Wrote file", "path", fullPath, "bytes", len(contents))
	return nil
}

// Move renames oldPath to newPath. The destination must not exist.
func (m *Manager) Move(oldPath, newPath string) error {
	fullOldPath, err := m.resolver.Resolve(oldPath)
	if err != nil {
		return err
	}
	fullNewPath, err := m.resolver.Resolve(newPath)
	if err != nil {
		return err
	}

	if !exists(fullOldPath) {
		return newError(KindNotFound, fullOldPath, nil)
	}
	if exists(fullNewPath) {
		return newMoveError(KindAlreadyExists, fullOldPath, fullNewPath, nil)
	}

	if err := os.Rename(fullOldPath, fullNewPath); err != nil {
		m.logger.Error("Failed to move path", "from", fullOldPath, "to", fullNewPath, "error", err)
		return newMoveError(KindMoveFailed, fullOldPath, fullNewPath, err)
	}
	invalidate(m.invalidator, fullOldPath, fullNewPath)

	m.logger.Debug("Moved path", "from", fullOldPath, "to", fullNewPath)
	return nil
}

// Delete removes the file or directory tree at path.
//
// Directory trees are removed children first. If any entry fails the
// operation stops and the tree is left partially deleted.
func (m *Manager) Delete(path string) error {
	start := time.Now()
	defer m.logger.LogPerformance("delete", start)

	fullPath, err := m.resolver.Resolve(path)
	if err != nil {
		return err
	}

	if err := m.deleteTree(fullPath); err != nil {
		m.logger.Error("Failed to delete path", "path", fullPath, "error", err)
		return err
	}
	invalidate(m.invalidator, fullPath)

	m.logger.Debug("Deleted path", "path", fullPath)
	return nil
}

// Exists reports whether path exists under the root. Only resolution
// failures are returned as errors.
func (m *Manager) Exists(path string) (bool, error) {
	fullPath, err := m.resolver.Resolve(path)
	if err != nil {
		return false, err
	}
	return exists(fullPath), nil
}

// exists uses Lstat so a dangling symlink still occupies its name.
func exists(fullPath string) bool {
	_, err := os.Lstat(fullPath)
	return err == nil
}
