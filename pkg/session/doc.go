/*
Package session serializes access to persisted tour sessions.

The coordinator itself is synchronous and in-process. When sessions live in a
store shared by several requests or replicas, every read-modify-write goes
through a Manager, which holds a reference-counted local mutex per session and,
optionally, a distributed lock.
*/
package session
