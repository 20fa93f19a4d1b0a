package models

// InboxCategory identifies which inbox a thread was enumerated from.
type InboxCategory string

const (
	CategoryAccepted InboxCategory = "accepted"
	CategoryPending  InboxCategory = "pending"
)

// ThreadUser is one participant of a direct thread.
type ThreadUser struct {
	PK       int64  `json:"pk"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Thread is a conversation container as returned by the inbox feeds.
// Threads are created by the source platform and are read-only here,
// except for the approve side effect on pending threads.
type Thread struct {
	ThreadID string       `json:"thread_id"`
	Users    []ThreadUser `json:"users"`
	Pending  bool         `json:"pending"`
}

// PrimarySender returns the username of the first participant, which is
// the identity the thread's destination channel is keyed on.
func (t *Thread) PrimarySender() string {
	if len(t.Users) == 0 || t.Users[0].Username == "" {
		return "unknown_user"
	}
	return t.Users[0].Username
}
