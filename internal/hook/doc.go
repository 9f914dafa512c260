// Package hook intercepts the runner's entry points.
//
// The registration interceptor replaces the basic registration entry point.
// It publishes register events around every basic registration and redirects
// configured names to the multi task entry point:
//
//	RegisterTask(name) ─► beforeRegisterTask
//	                   ─► name in MultiSet ? RegisterMultiTask : original basic
//	                   ─► afterRegisterTask
//
// While the original multi primitive runs, the basic entry point is switched
// back to the original so the primitive's internal basic registration is not
// intercepted again.
//
// The lookup interceptor wraps the lookup entry point. A name is first
// resolved through the task map; when the runner has no matching task the
// plugin is located and loaded, and the lookup is retried once.
package hook
