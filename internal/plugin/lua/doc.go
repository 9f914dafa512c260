// Package lua runs tama Lua modules in sandboxed gopher-lua states.
//
// Each State opens only the base, package, table, string and math libraries.
// dofile, loadfile, load and loadstring are removed and require only resolves
// the standard safe modules plus modules preloaded with State.Preload, so a
// task file can reach the host only through the tama module.
//
// Files are read through the tama filesystem rather than by gopher-lua
// directly, which keeps Lua modules loadable from any afero backend.
//
// # Timeouts
//
// Every top-level Exec or Call runs under a context with the state's timeout.
// Nested calls (a Go function called from Lua calling back into Lua) share the
// outer deadline.
//
// # Threading
//
// gopher-lua's LState is not goroutine-safe. A State must be used from one
// goroutine at a time.
package lua
