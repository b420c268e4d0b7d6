package domain

// Action identifies the kind of mutation recorded in a Change.
type Action string

// Mutation actions captured by the engine.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change records a single applied mutation. The engine derives the set of
// collections to persist and broadcast from the changes a mutation produced;
// cascade deletes therefore surface as multiple changes committed together.
type Change struct {
	Collection Collection `json:"collection"`
	Action     Action     `json:"action"`
	ID         string     `json:"id"`
}
