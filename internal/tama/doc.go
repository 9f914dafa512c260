// Package tama wires the task map resolver, plugin locator and loader, the
// entry point interceptors and the config aggregator onto a host runner.
//
// Startup runs in a fixed order:
//
//	validate config
//	run event listeners          (Lua files, then Go listeners)
//	publish beforeHooks
//	install interceptors         (registration, lookup)
//	publish beforeInitConfig
//	aggregate configPath         -> runner.InitConfig
//	publish afterInitialized
//
// After New returns, looking up an unknown task on the runner resolves the
// task map, locates the plugin, loads it and retries the lookup once.
package tama
