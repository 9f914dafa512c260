package hook

import (
	"github.com/charmbracelet/log"

	"github.com/dshills/tama/internal/resolve"
	"github.com/dshills/tama/internal/runner"
)

// LookupName is the extension name the lookup interceptor installs under.
const LookupName = "lookup"

// PluginLoader locates and loads a plugin by name. It reports false when
// nothing was found.
type PluginLoader interface {
	LoadPlugin(name string) (bool, error)
}

type lookup struct {
	resolver *resolve.Resolver
	plugins  PluginLoader
	logger   *log.Logger
	original runner.LookupFunc
}

// InstallLookup installs the lookup interceptor on r. resolver may be nil
// when there is no task map. It returns false if the interceptor is already
// installed on r.
func InstallLookup(r *runner.Runner, resolver *resolve.Resolver, plugins PluginLoader, opts ...Option) bool {
	o := buildOptions("hook.lookup", opts)
	if resolver == nil {
		resolver = resolve.New(nil)
	}
	lk := &lookup{
		resolver: resolver,
		plugins:  plugins,
		logger:   o.logger,
	}
	return r.Install(LookupName, func(current runner.Entries) runner.Entries {
		lk.original = current.TaskPlusArgs
		return runner.Entries{TaskPlusArgs: lk.taskPlusArgs}
	})
}

func (lk *lookup) taskPlusArgs(name string) (runner.Thing, error) {
	lookupName := name
	var plugin string
	if spec, ok := lk.resolver.Resolve(name); ok {
		lookupName = spec.LookupName()
		plugin = spec.Plugin
		lk.logger.Debug("task map resolved", "task", name, "plugin", spec.Plugin, "lookup", lookupName)
	}

	thing, err := lk.original(lookupName)
	if err != nil || thing.Task != nil {
		return thing, err
	}

	if plugin == "" && len(thing.Args) > 0 {
		plugin = thing.Args[0]
	}
	if plugin == "" || lk.plugins == nil {
		return runner.Thing{}, &TaskResolutionError{Task: name}
	}

	found, err := lk.plugins.LoadPlugin(plugin)
	if err != nil {
		return runner.Thing{}, err
	}
	if !found {
		lk.logger.Debug("plugin not found", "task", name, "plugin", plugin)
		return runner.Thing{}, &TaskResolutionError{Task: name}
	}

	thing, err = lk.original(lookupName)
	if err != nil {
		return runner.Thing{}, err
	}
	if thing.Task == nil {
		return runner.Thing{}, &TaskResolutionError{Task: name}
	}
	return thing, nil
}
