/*
Package domain contains the core models of the guided-tour subsystem.

It defines the step descriptors that tours are made of, the tour session owned by a
coordinator, the role classification used to offer tours, and the lifecycle events emitted
while a tour runs. The package is kept pure and free of I/O so that registries, stores and
presenters can be swapped independently.

# Key Entities

  - StepDescriptor: one highlighted element in a tour (target selector, content, placement).
  - Tour: a named, ordered sequence of steps plus the roles it is offered to.
  - TourSession: the mutable state owned by a coordinator (active, steps, index, tag).
  - SessionDiff: a partial update of a session, streamed to browsers.
*/
package domain
