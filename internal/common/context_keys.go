// File: internal/common/context_keys.go
package common

const (
	// ActorRoleHeader carries the acting role ("customer" or "mechanic").
	ActorRoleHeader = "X-Actor-Role"
	// ActorIDHeader carries the actor's id within its role.
	ActorIDHeader = "X-Actor-Id"
	// ActorNameHeader carries the actor's display name.
	ActorNameHeader = "X-Actor-Name"
	// ActorKey is the context key for storing the identified actor
	ActorKey = "actor"
)
