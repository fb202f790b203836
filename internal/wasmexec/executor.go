// Package wasmexec runs WebAssembly modules stored under a guarded root.
//
// An Executor compiles each path once and keeps the compiled module until the
// path is invalidated, which fileops.SourceManager does after every write, move
// and delete.
//
// A module's only outcome is its WASI exit status. Exit code 0 is success; any
// other code is returned as an error wrapping *sys.ExitError (see ExitCode).
package wasmexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fsguard/internal/logging"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// Executor instantiates WebAssembly modules with WASI preview1 available.
// Instantiation runs the module's "_start" export when it has one.
//
// Executor is not safe for concurrent use.
type Executor struct {
	runtime  wazero.Runtime
	compiled map[string]wazero.CompiledModule
	logger   *logging.AppLogger

	stdout   io.Writer
	stderr   io.Writer
	args     []string
	mountDir string
}

// Option configures an Executor.
type Option func(*Executor)

// WithStdout sets the writer for guest stdout. Defaults to io.Discard.
func WithStdout(w io.Writer) Option {
	return func(e *Executor) { e.stdout = w }
}

// WithStderr sets the writer for guest stderr. Defaults to io.Discard.
func WithStderr(w io.Writer) Option {
	return func(e *Executor) { e.stderr = w }
}

// WithArgs sets the guest argv after argv[0], which is always the module path.
func WithArgs(args ...string) Option {
	return func(e *Executor) { e.args = args }
}

// WithReadOnlyMount exposes dir to the guest as "/", read only.
func WithReadOnlyMount(dir string) Option {
	return func(e *Executor) { e.mountDir = dir }
}

// WithLogger sets the logger. Defaults to logging.GetDefault().
func WithLogger(logger *logging.AppLogger) Option {
	return func(e *Executor) { e.logger = logger }
}

// New creates an Executor backed by a fresh wazero runtime.
func New(ctx context.Context, opts ...Option) *Executor {
	runtime := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)

	e := &Executor{
		runtime:  runtime,
		compiled: make(map[string]wazero.CompiledModule),
		stdout:   io.Discard,
		stderr:   io.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.GetDefault()
	}
	return e
}

// Execute instantiates the module at path and closes it once its start
// function returns. A WASI exit with code 0 counts as success.
func (e *Executor) Execute(ctx context.Context, path string) error {
	compiled, err := e.compile(ctx, path)
	if err != nil {
		return err
	}

	config := wazero.NewModuleConfig().
		WithName(""). // anonymous so the same module can be instantiated again
		WithStdout(e.stdout).
		WithStderr(e.stderr).
		WithArgs(append([]string{path}, e.args...)...)
	if e.mountDir != "" {
		config = config.WithFSConfig(wazero.NewFSConfig().WithReadOnlyDirMount(e.mountDir, "/"))
	}

	mod, err := e.runtime.InstantiateModule(ctx, compiled, config)
	if err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.ExitCode() == 0 {
				return nil
			}
			return fmt.Errorf("module exited: %w", err)
		}
		return fmt.Errorf("instantiate failed: %w", err)
	}

	return mod.Close(ctx)
}

// Invalidate drops the compiled modules cached for path and for any file
// beneath it.
func (e *Executor) Invalidate(path string) {
	prefix := strings.TrimSuffix(path, string(filepath.Separator)) + string(filepath.Separator)
	for cached, compiled := range e.compiled {
		if cached != path && !strings.HasPrefix(cached, prefix) {
			continue
		}
		delete(e.compiled, cached)

		if err := compiled.Close(context.Background()); err != nil {
			e.logger.Warn("Failed to release compiled module", "path", cached, "error", err)
		}
		e.logger.Debug("Invalidated compiled module", "path", cached)
	}
}

// ExitCode reports the guest exit code carried by err, if the module ran to a
// WASI proc_exit with a non-zero status.
func ExitCode(err error) (uint32, bool) {
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

// Cached returns the number of compiled modules currently held.
func (e *Executor) Cached() int {
	return len(e.compiled)
}

// Close releases the runtime and every compiled module.
func (e *Executor) Close(ctx context.Context) error {
	e.compiled = make(map[string]wazero.CompiledModule)
	return e.runtime.Close(ctx)
}

func (e *Executor) compile(ctx context.Context, path string) (wazero.CompiledModule, error) {
	if compiled, ok := e.compiled[path]; ok {
		return compiled, nil
	}

	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}

	e.compiled[path] = compiled
	e.logger.Debug("Compiled module", "path", path, "bytes", len(wasm))
	return compiled, nil
}
