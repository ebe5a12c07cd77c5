/*
Package guidepost provides guided product tours for the dealer and administrator areas of a website.

A tour is an ordered list of steps, each pointing at an element of the page and carrying a short
title and body. Trigger surfaces (an icon, a labeled button or a floating menu filtered by role)
start tours through a coordinator that owns the session state: whether a tour is active, which
steps it shows and where the user is. A presentation engine draws the steps and reports back when
the user closes them.

# Concept

Guidepost keeps the tour catalog (Registry) apart from the session state (Coordinator) and from
rendering (Presenter). The coordinator is only reachable through a context it was provided to;
asking for it anywhere else panics with domain.ErrNotProvided, which surfaces wiring mistakes at
once. Sessions are persisted through a SessionStore (memory, file or Redis) and serialized per id
by a session manager.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/guidepost"
	)

	func main() {
		// Builtin catalog plus any tour documents in ./tours
		g, err := guidepost.New("./tours")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		s, err := g.Start(ctx, "browser-123", "admin-dashboard", "")
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("step %d of %d", s.CurrentIndex+1, len(s.Steps))

		if _, err := g.GoTo(ctx, "browser-123", 2); err != nil {
			log.Fatal(err)
		}
	}
*/
package guidepost
