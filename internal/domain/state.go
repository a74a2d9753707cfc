package domain

// DialogState is the step the user is expected to answer next
type DialogState string

const (
	StateIdle             DialogState = "idle"
	StateReadEmail        DialogState = "read-email"
	StateReadAreas        DialogState = "read-areas"
	StateReadBeds         DialogState = "read-beds"
	StateReadMinPrice     DialogState = "read-min-price"
	StateReadPrice        DialogState = "read-price"
	StateConfirm          DialogState = "confirm"
	StateReadEditAreas    DialogState = "read-edit-areas"
	StateReadEditBeds     DialogState = "read-edit-beds"
	StateReadEditMinPrice DialogState = "read-edit-min-price"
	StateReadEditPrice    DialogState = "read-edit-price"
)

// AllStates lists every dialog state.
var AllStates = []DialogState{
	StateIdle,
	StateReadEmail,
	StateReadAreas,
	StateReadBeds,
	StateReadMinPrice,
	StateReadPrice,
	StateConfirm,
	StateReadEditAreas,
	StateReadEditBeds,
	StateReadEditMinPrice,
	StateReadEditPrice,
}

// IsEdit reports whether the state belongs to the edit branch
func (s DialogState) IsEdit() bool {
	switch s {
	case StateReadEditAreas, StateReadEditBeds, StateReadEditMinPrice, StateReadEditPrice:
		return true
	}
	return false
}

// ReadsAreas reports whether an area keyboard is active.
func (s DialogState) ReadsAreas() bool {
	return s == StateReadAreas || s == StateReadEditAreas
}

// ReadsBeds reports whether a bed keyboard is active.
func (s DialogState) ReadsBeds() bool {
	return s == StateReadBeds || s == StateReadEditBeds
}

// ReadsPrice reports whether a numeric price answer is expected.
func (s DialogState) ReadsPrice() bool {
	switch s {
	case StateReadMinPrice, StateReadPrice, StateReadEditMinPrice, StateReadEditPrice:
		return true
	}
	return false
}

// ReadsMinPrice reports whether the expected number is the lower bound.
func (s DialogState) ReadsMinPrice() bool {
	return s == StateReadMinPrice || s == StateReadEditMinPrice
}

// Action describes what the bot is doing right now
type Action string

const (
	ActionAskEmail        Action = "ask-email"
	ActionWaitingForReply Action = "waiting-for-reply"
)

// Step pairs the current action with the next expected state.
type Step struct {
	Current Action
	Next    DialogState
}

// StepFor returns the step that leads into the given state.
func StepFor(next DialogState) Step {
	if next == StateReadEmail {
		return Step{Current: ActionAskEmail, Next: next}
	}
	return Step{Current: ActionWaitingForReply, Next: next}
}
