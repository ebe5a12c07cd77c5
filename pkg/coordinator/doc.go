/*
Package coordinator implements the tour coordinator: the two-state machine
(INACTIVE, ACTIVE) that owns a tour session.

	INACTIVE --Start--> ACTIVE
	ACTIVE   --Start--> ACTIVE   (session replaced, index reset)
	ACTIVE   --Stop---> INACTIVE
	INACTIVE --Stop---> INACTIVE (no-op)

A coordinator is never reached through a package-level variable. It is constructed
explicitly and threaded to whoever needs it, either directly or through a context
(see NewContext and MustFromContext). Asking a context for a coordinator that was never
provided is a wiring mistake and panics with domain.ErrNotProvided.
*/
package coordinator
