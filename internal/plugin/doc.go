// Package plugin locates and loads tama plugin modules.
//
// A plugin is either a single custom task file, found by name under one of
// the configured custom task paths, or a module directory whose tasks/
// subdirectory holds task files:
//
//	tasks/lint.lua                      custom task file for "lint"
//	tama_modules/tama-deploy/tasks/     module task directory for "deploy"
//
// # Search order
//
// Locator.Locate tries every custom path first and then every module path.
// The first directory with any match wins:
//
//  1. custom task paths, glob **/<name>.*
//  2. <cwd>/tama_modules, glob *<name>/tasks
//  3. <dir of executable>/tama_modules
//  4. extra plugin paths from the config
//  5. entries of TAMA_PATH
//  6. ~/.tama_modules and ~/.tama_libraries
//
// A hit publishes beforeLoadCustomTask or beforeLoadModuleTasks before Locate
// returns.
//
// # Module kinds
//
// Files are turned into a Capability by a factory chosen by extension. Lua
// (.lua) is built in; RegisterFactory adds other kinds. A Lua module either
// registers tasks at the top level or returns a function that receives the
// tama module.
package plugin
