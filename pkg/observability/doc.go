/*
Package observability turns coordinator lifecycle events into metrics and logs.

Both Metrics and LoggingHooks produce domain.LifecycleHooks, so they combine with
LifecycleHooks.Merge and plug into coordinator.WithLifecycleHooks or
session.WithLifecycleHooks.

Feed and Aggregator expose state changes through the introspection package:
the session manager and the registry publish on a Feed, and an Aggregator merges
their streams into snapshots for logging or inspection.
*/
package observability
