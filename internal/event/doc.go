// Package event provides the lifecycle event hub for tama.
//
// The hub is a small synchronous publish/subscribe bus. Listeners subscribe to
// a Kind and are invoked in subscription order every time that kind is
// published. The first failing handler stops delivery and its error is
// returned to the publisher wrapped in a *HandlerError.
//
// # Event Kinds
//
//	beforeHooks            - before the runner entry points are intercepted
//	beforeInitConfig       - before aggregated task config is loaded
//	beforeRegisterTask     - before a basic task registration is dispatched
//	afterRegisterTask      - after a basic task registration is dispatched
//	beforeLoadCustomTask   - a custom task file is about to be loaded
//	beforeLoadModuleTasks  - a module task directory is about to be loaded
//	afterInitialized       - startup is complete
//
// # Basic Usage
//
//	hub := event.NewHub()
//	hub.SubscribeFunc(event.BeforeLoadCustomTask, func(ev event.Event) error {
//	    fmt.Println("loading", ev.Payload)
//	    return nil
//	})
//	err := hub.Publish(event.BeforeLoadCustomTask, "/tasks/lint.lua")
package event
