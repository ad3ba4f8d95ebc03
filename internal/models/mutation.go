package models

// MutationKind classifies a pending store operation.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// MutationOrigin records where a mutation came from.
type MutationOrigin string

const (
	OriginLocal  MutationOrigin = "local"
	OriginRemote MutationOrigin = "remote"
)

// Mutation describes one in-flight remote-backed store operation.
// TargetID is empty for a create until the service (or the fallback
// synthesis) assigns an identifier.
type Mutation struct {
	Kind     MutationKind   `json:"kind"`
	TargetID string         `json:"targetId,omitempty"`
	Payload  RecordPatch    `json:"payload"`
	Origin   MutationOrigin `json:"origin"`
}
