// Package fileops provides file operations confined to a single root directory.
//
// Every path passed to a Manager is relative to its root. Paths are split on
// both "/" and "\", empty and "." segments are dropped, and any remaining ".."
// segment is rejected with ErrIllegalParent before a syscall is made. The root
// itself may contain ".." segments; they are folded once when the Manager is
// created.
//
// # Confinement
//
// Confinement is lexical. Symlinks inside the root are neither resolved nor
// checked, so a link pointing outside the root is followed by Read, and a
// linked directory is followed by every operation. Write refuses a target that
// is itself a link, and Delete removes links without following them.
//
// # Errors
//
// All failures are *Error values. Match the kind with errors.Is:
//
//	contents, err := m.Read("notes/today.txt")
//	if errors.Is(err, fileops.ErrNotFound) {
//	    // ...
//	}
//
// The underlying OS error, when there is one, is reachable the same way:
//
//	errors.Is(err, os.ErrPermission)
//
// # Executable sources
//
// SourceManager decorates a Manager with Run, which hands a confined, existing,
// regular file to an Executor. When the Executor also implements Invalidator,
// SourceManager.Write drops the executor's cached form of the written file.
//
//	sm := fileops.NewSourceManager(m, executor)
//	if err := sm.Run(ctx, "plugins/hello.wasm"); err != nil {
//	    return fmt.Errorf("run plugin: %w", err)
//	}
//
// # Limitations
//
// Existence checks and the operations that follow them are separate syscalls
// and can race with other processes. Recursive Delete is not atomic: when one
// entry fails, entries removed before it stay removed.
package fileops
