package event_bus

import "time"

const (
	FieldChangedEvent EventType = "form.field_changed"
	EntrySavedEvent   EventType = "entry.saved"
	EntryDeletedEvent EventType = "entry.deleted"
)

// FieldChangedType is the per-field event type, so listeners of one field are not
// woken by changes to another.
func FieldChangedType(field string) EventType {
	return FieldChangedEvent + ":" + EventType(field)
}

type FieldChanged struct {
	Field string
	Value any
}

// EntrySaved is published after an expense or debt draft was accepted by the upstream API.
type EntrySaved struct {
	Kind        string
	Id          string
	Created     bool
	UserId      string
	Description string
	Total       string
	Installment bool
	Count       int
	EndDate     time.Time
	SavedAt     time.Time
}

type EntryDeleted struct {
	Kind   string
	Id     string
	UserId string
}
