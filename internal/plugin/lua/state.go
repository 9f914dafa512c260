package lua

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/tama/internal/vfs"
)

// DefaultExecutionTimeout bounds a single top-level Lua call.
const DefaultExecutionTimeout = 30 * time.Second

// State wraps a sandboxed gopher-lua state.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	fs      *vfs.FS
	sandbox *Sandbox
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the timeout of each top-level call. Zero disables it.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithFS sets the filesystem ExecFile reads from.
func WithFS(fsys *vfs.FS) StateOption {
	return func(s *State) {
		s.fs = fsys
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultExecutionTimeout,
		fs:      vfs.OS(),
	}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	s.L = L
	openSafeLibraries(L)

	s.sandbox = NewSandbox(L)
	s.sandbox.Install()
	return s
}

func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// Preload makes a module available to require under name.
func (s *State) Preload(name string, loader lua.LGFunction) {
	s.L.PreloadModule(name, loader)
	s.sandbox.Allow(name)
}

// ExecFile runs the Lua file at path and returns the values the chunk returns.
func (s *State) ExecFile(path string) ([]lua.LValue, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s.exec(path, data)
}

// ExecString runs code as a chunk called name.
func (s *State) ExecString(name, code string) ([]lua.LValue, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.exec(name, []byte(code))
}

func (s *State) exec(name string, code []byte) ([]lua.LValue, error) {
	fn, err := s.L.Load(bytes.NewReader(code), "@"+name)
	if err != nil {
		return nil, err
	}
	return s.call(fn, nil)
}

// Call calls fn with args and returns its results.
func (s *State) Call(fn lua.LValue, args ...lua.LValue) ([]lua.LValue, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	f, ok := fn.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrNotFunction, fn.Type())
	}
	return s.call(f, args)
}

// CallContext calls fn with args under ctx instead of the execution timeout.
// Cancelling ctx stops fn at its next instruction and the returned error
// wraps ctx.Err().
func (s *State) CallContext(ctx context.Context, fn lua.LValue, args ...lua.LValue) ([]lua.LValue, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	f, ok := fn.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrNotFunction, fn.Type())
	}
	if ctx == nil {
		ctx = context.Background()
	}

	L := s.L
	prev := L.Context()
	L.SetContext(ctx)
	defer func() {
		if prev != nil {
			L.SetContext(prev)
		} else {
			L.RemoveContext()
		}
	}()

	res, err := s.call(f, args)
	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("lua call interrupted: %w", ctx.Err())
	}
	return res, err
}

func (s *State) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	return nil
}

func (s *State) call(fn *lua.LFunction, args []lua.LValue) (results []lua.LValue, err error) {
	L := s.L

	var ctx context.Context
	if L.Context() == nil && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), s.timeout)
		L.SetContext(ctx)
		defer func() {
			L.RemoveContext()
			cancel()
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	top := L.GetTop()
	L.Push(fn)
	for _, arg := range args {
		L.Push(arg)
	}

	if err := L.PCall(len(args), lua.MultRet, nil); err != nil {
		if ctx != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w after %s", ErrExecutionTimeout, s.timeout)
		}
		return nil, err
	}

	n := L.GetTop() - top
	results = make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		results[i] = L.Get(top + i + 1)
	}
	L.Pop(n)
	return results, nil
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Later calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
