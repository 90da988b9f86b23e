package types

import "time"

// RecordAction is the kind of mutation a RecordEvent describes.
type RecordAction string

const (
	ActionCreated RecordAction = "created"
	ActionUpdated RecordAction = "updated"
	ActionDeleted RecordAction = "deleted"
)

// RecordEvent is published after a farmer, product or need changes.
type RecordEvent struct {
	// Entity is "farmer", "product" or "need".
	Entity string `json:"entity"`

	// Action is what happened to the record.
	Action RecordAction `json:"action"`

	// ID is the identifier of the changed record.
	ID int `json:"id"`

	// FarmerID is the owning farmer, equal to ID for farmer events.
	FarmerID int `json:"farmer_id"`

	// OccurredAt is when the mutation was committed.
	OccurredAt time.Time `json:"occurred_at"`
}
