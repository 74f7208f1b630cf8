package session

// State is the lifecycle state of a response session.
type State string

const (
	StateIdle                 State = "idle"
	StateEditing              State = "editing"
	StateSaving               State = "saving"
	StateSubmitConfirmPending State = "submit_confirm_pending"
	StateSubmitting           State = "submitting"
	StateSubmitted            State = "submitted"
	StateError                State = "error"
)

// SaveStatus describes the autosave pipeline as shown next to the form.
type SaveStatus string

const (
	SaveIdle    SaveStatus = "idle"    // nothing to save yet
	SavePending SaveStatus = "pending" // edits waiting for the debounce timer
	SaveSaving  SaveStatus = "saving"
	SaveSaved   SaveStatus = "saved"
	SaveFailed  SaveStatus = "failed"
)

// transitions lists the allowed moves. Error always resolves back to Editing.
var transitions = map[State][]State{
	StateIdle:                 {StateEditing},
	StateEditing:              {StateSaving, StateSubmitConfirmPending},
	StateSaving:               {StateEditing, StateError, StateSubmitConfirmPending},
	StateSubmitConfirmPending: {StateEditing, StateSubmitting},
	StateSubmitting:           {StateSubmitted, StateError},
	StateError:                {StateEditing},
	StateSubmitted:            nil,
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// acceptsEdits reports whether answers and navigation may change in s.
func (s State) acceptsEdits() bool {
	return s == StateEditing || s == StateSaving || s == StateSubmitConfirmPending
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateSubmitted
}
