package service

import (
	"strings"

	"instacord/internal/models"
)

// ThreadFilter decides whether a thread is in scope given the
// configured sender allow-list.
type ThreadFilter struct {
	allowed map[string]struct{}
}

// NewThreadFilter builds a filter from a list of usernames. Entries
// are trimmed and lowercased; an empty list allows every thread.
func NewThreadFilter(usernames []string) *ThreadFilter {
	allowed := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		u = strings.ToLower(strings.TrimSpace(u))
		if u != "" {
			allowed[u] = struct{}{}
		}
	}
	return &ThreadFilter{allowed: allowed}
}

// InScope reports whether any participant of the thread is on the
// allow-list. With no allow-list configured every thread is in scope.
func (f *ThreadFilter) InScope(thread *models.Thread) bool {
	if len(f.allowed) == 0 {
		return true
	}
	for _, user := range thread.Users {
		if _, ok := f.allowed[strings.ToLower(user.Username)]; ok {
			return true
		}
	}
	return false
}

// Empty reports whether the filter allows all senders.
func (f *ThreadFilter) Empty() bool {
	return len(f.allowed) == 0
}
