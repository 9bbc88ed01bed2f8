// Package app wires the dashboard together and manages its lifecycle.
//
// New builds every component from a Config: the OpenTelemetry providers and
// instruments, the memoizing table cache and its optional file watcher, the
// websocket hub, the dashboard and health services, and the chi router with
// its middleware chain. Start begins serving; Stop shuts the server down and
// releases the watcher, the hub and the telemetry providers.
//
// Typical use from a main package:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM. Initialization errors are returned to
// the caller; the package never calls os.Exit.
package app
