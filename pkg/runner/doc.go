/*
Package runner implements a terminal Presentation Engine for tour sessions.

The Runner walks the steps of the session held by the coordinator provided to
its context. It renders the current step through an IOHandler, reads a
command (next, prev, goto, close) and applies it to the coordinator. Steps
whose target selector does not resolve are skipped in the direction of travel.

# Key Components

  - Runner: implements ports.Presenter.
  - IOHandler: decouples how steps are shown and commands are read.
  - TextHandler: interactive CLI usage with an optional markdown renderer.
  - JSONHandler: JSON-Lines for scripted or piped usage.

# Usage

	ctx = coordinator.NewContext(ctx, c)
	c.Start(ctx, steps, "admin-dashboard")

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	err := r.Present(ctx, c.Session(), func() { c.Stop(ctx) })
*/
package runner
