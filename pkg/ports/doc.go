/*
Package ports defines the driven ports (interfaces) of the guided-tour subsystem.

These interfaces decouple the coordinator from external implementations, allowing
tours to come from code or documents, sessions to live in memory, on disk or in Redis,
and steps to be presented by any UI.

# Key Interfaces

  - StepRegistry: looks up the ordered steps of a named tour and the tours offered to a role.
  - TourLoader: reads tour definitions from an external source (e.g. Loam documents).
  - SessionStore: persists tour sessions keyed by browser session ID.
  - DistributedLocker: serializes session access across multiple replicas.
  - Presenter: renders the current step and reports when the user closes the tour.
*/
package ports
