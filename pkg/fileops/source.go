package fileops

import (
	"context"
	"os"
)

// Executor runs the file at an absolute, already confined path as a unit of
// code.
type Executor interface {
	Execute(ctx context.Context, path string) error
}

// SourceManager wraps a Manager for trees that hold executable sources.
//
// It adds Run and keeps the executor's cache coherent: when the executor also
// implements Invalidator, every successful Write, Move and Delete drops the
// cached form of each path it changed.
type SourceManager struct {
	*Manager
	executor    Executor
	invalidator Invalidator
}

// NewSourceManager decorates m with execution support.
func NewSourceManager(m *Manager, executor Executor) *SourceManager {
	sm := &SourceManager{Manager: m, executor: executor}
	if inv, ok := executor.(Invalidator); ok {
		sm.invalidator = inv
	}
	return sm
}

// Write writes through the embedded Manager, then invalidates the
// executor's cached form of the file.
func (s *SourceManager) Write(path string, contents []byte) error {
	if err := s.Manager.Write(path, contents); err != nil {
		return err
	}
	if s.invalidator == nil {
		return nil
	}

	fullPath, err := s.resolver.Resolve(path)
	if err != nil {
		return err
	}
	s.invalidator.Invalidate(fullPath)
	return nil
}

// Move moves through the embedded Manager, then invalidates both paths.
func (s *SourceManager) Move(oldPath, newPath string) error {
	if err := s.Manager.Move(oldPath, newPath); err != nil {
		return err
	}
	if s.invalidator == nil {
		return nil
	}

	fullOldPath, err := s.resolver.Resolve(oldPath)
	if err != nil {
		return err
	}
	fullNewPath, err := s.resolver.Resolve(newPath)
	if err != nil {
		return err
	}
	invalidate(s.invalidator, fullOldPath, fullNewPath)
	return nil
}

// Delete deletes through the embedded Manager, then invalidates path and
// everything that was beneath it.
func (s *SourceManager) Delete(path string) error {
	if err := s.Manager.Delete(path); err != nil {
		return err
	}
	if s.invalidator == nil {
		return nil
	}

	fullPath, err := s.resolver.Resolve(path)
	if err != nil {
		return err
	}
	s.invalidator.Invalidate(fullPath)
	return nil
}

// Run executes the regular file at path. Anything that is missing,
// unreadable or not a regular file fails with ErrNotFound.
//
// The executor's error is the only result of a run. It fails with
// ErrExecFailed and stays reachable through errors.As, so an executor that
// reports exit statuses as errors can have them recovered by the caller.
func (s *SourceManager) Run(ctx context.Context, path string) error {
	fullPath, err := s.resolver.Resolve(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return newError(KindNotFound, fullPath, err)
	}
	if !info.Mode().IsRegular() {
		return newError(KindNotFound, fullPath, nil)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return newError(KindNotFound, fullPath, err)
	}
	f.Close()

	s.logger.Debug("Executing source", "path", fullPath)
	if err := s.executor.Execute(ctx, fullPath); err != nil {
		s.logger.Error("Source execution failed", "path", fullPath, "error", err)
		return newError(KindExecFailed, fullPath, err)
	}
	return nil
}
