package domain

// User represents a bot user inside one chat
type User struct {
	ID            int64
	UserID        int64
	ChatID        int64
	Locale        string
	CurrentAction Action
	NextAction    DialogState
	// PendingDeleteID is a bot prompt removed once the reply to it arrives.
	PendingDeleteID  *int
	RequestID        *int64
	Email            string
	IsTrial          bool
	MessageForDelete []int
}

// Apply moves the user to the given step.
func (u *User) Apply(s Step) {
	u.CurrentAction = s.Current
	u.NextAction = s.Next
}

// QueueForDelete remembers a bot message to clean up on the next preview.
func (u *User) QueueForDelete(messageID int) {
	for _, id := range u.MessageForDelete {
		if id == messageID {
			return
		}
	}
	u.MessageForDelete = append(u.MessageForDelete, messageID)
}

// TakePendingDelete returns the pending prompt id and clears it
func (u *User) TakePendingDelete() (int, bool) {
	if u.PendingDeleteID == nil {
		return 0, false
	}
	id := *u.PendingDeleteID
	u.PendingDeleteID = nil
	return id, true
}

// Unqueue forgets a message that was already removed.
func (u *User) Unqueue(messageID int) {
	for i, id := range u.MessageForDelete {
		if id == messageID {
			u.MessageForDelete = append(u.MessageForDelete[:i], u.MessageForDelete[i+1:]...)
			return
		}
	}
}
