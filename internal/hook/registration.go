package hook

import (
	"github.com/charmbracelet/log"

	"github.com/dshills/tama/internal/event"
	"github.com/dshills/tama/internal/logger"
	"github.com/dshills/tama/internal/runner"
)

// RegistrationName is the extension name the registration interceptor
// installs under.
const RegistrationName = "registration"

// Option configures an interceptor.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the interceptor logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(component string, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logger.Component(o.logger, component)
	return o
}

type registration struct {
	runner *runner.Runner
	hub    *event.Hub
	set    MultiSet
	logger *log.Logger

	basic runner.RegisterFunc
	multi runner.RegisterFunc
}

// InstallRegistration installs the registration interceptor on r. Names in
// set are registered as multi tasks. hub may be nil. It returns false if the
// interceptor is already installed on r.
func InstallRegistration(r *runner.Runner, hub *event.Hub, set MultiSet, opts ...Option) bool {
	o := buildOptions("hook.register", opts)
	reg := &registration{
		runner: r,
		hub:    hub,
		set:    set,
		logger: o.logger,
	}
	return r.Install(RegistrationName, func(current runner.Entries) runner.Entries {
		reg.basic = current.RegisterTask
		reg.multi = current.RegisterMultiTask
		return runner.Entries{
			RegisterTask:      reg.registerTask,
			RegisterMultiTask: reg.registerMultiTask,
		}
	})
}

func (reg *registration) registerTask(name, desc string, fn runner.TaskFunc) error {
	payload := event.RegisterPayload{Name: name, Description: desc, Fn: fn}
	if err := reg.publish(event.BeforeRegisterTask, payload); err != nil {
		return err
	}

	var err error
	if reg.set.Contains(name) {
		reg.logger.Debug("registering basic task as multi task", "task", name)
		err = reg.runner.Entries().RegisterMultiTask(name, desc, fn)
	} else {
		err = reg.basic(name, desc, fn)
	}
	if err != nil {
		return err
	}

	return reg.publish(event.AfterRegisterTask, payload)
}

// registerMultiTask runs the original multi primitive with the original
// basic entry point in place, then puts back whatever basic entry point was
// current, including wrappers installed after this interceptor.
func (reg *registration) registerMultiTask(name, desc string, fn runner.TaskFunc) error {
	current := reg.runner.Entries().RegisterTask
	reg.runner.SetEntries(runner.Entries{RegisterTask: reg.basic})
	defer reg.runner.SetEntries(runner.Entries{RegisterTask: current})
	return reg.multi(name, desc, fn)
}

func (reg *registration) publish(kind event.Kind, payload event.RegisterPayload) error {
	if reg.hub == nil {
		return nil
	}
	return reg.hub.Publish(kind, payload)
}
