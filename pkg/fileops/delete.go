package fileops

import (
	"os"
	"path/filepath"
)

// deleteEntry is a pending item on the delete work list. expanded is set
// once a directory's children have been pushed above it.
type deleteEntry struct {
	full     string
	expanded bool
}

// deleteTree removes full using an explicit stack so deep trees do not grow
// the call stack. Names returned by ReadDir are single segments and are
// joined as is; only the length limit applies to them.
func (m *Manager) deleteTree(full string) error {
	stack := []deleteEntry{{full: full}}

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if entry.expanded {
			if err := os.Remove(entry.full); err != nil {
				return newError(KindDeleteFailed, entry.full, err)
			}
			continue
		}

		info, err := os.Lstat(entry.full)
		if err != nil {
			return newError(KindUnknownPathType, entry.full, err)
		}

		switch mode := info.Mode(); {
		case mode.IsRegular(), mode&os.ModeSymlink != 0:
			// Symlinks are removed, never followed.
			if err := os.Remove(entry.full); err != nil {
				return newError(KindDeleteFailed, entry.full, err)
			}

		case mode.IsDir():
			children, err := os.ReadDir(entry.full)
			if err != nil {
				return newError(KindReadFailed, entry.full, err)
			}

			entry.expanded = true
			stack = append(stack, entry)

			for _, child := range children {
				childFull := filepath.Join(entry.full, child.Name())
				if err := m.resolver.checkLength(childFull); err != nil {
					return err
				}
				stack = append(stack, deleteEntry{full: childFull})
			}

		default:
			return newError(KindUnknownPathType, entry.full, nil)
		}
	}

	return nil
}
