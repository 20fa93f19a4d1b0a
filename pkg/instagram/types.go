package instagram

import "instacord/internal/models"

// API envelope shapes for the private-style direct endpoints. Only the
// fields the bridge consumes are modeled.

type inboxResponse struct {
	Inbox struct {
		Threads []models.Thread `json:"threads"`
	} `json:"inbox"`
	Status string `json:"status"`
}

type threadResponse struct {
	Thread struct {
		ThreadID string           `json:"thread_id"`
		Items    []models.RawItem `json:"items"`
	} `json:"thread"`
	Status string `json:"status"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type loginResponse struct {
	LoggedInUser struct {
		PK       int64  `json:"pk"`
		Username string `json:"username"`
	} `json:"logged_in_user"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
